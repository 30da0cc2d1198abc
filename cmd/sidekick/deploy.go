package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/kind/pkg/cluster"
	"sigs.k8s.io/kind/pkg/cmd"
)

func deployCommand(args []string) error {
	if len(args) < 1 {
		printDeployUsage()
		return fmt.Errorf("no subcommand specified")
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "cluster":
		return deployClusterCommand(subArgs)
	case "dapr":
		return deployDaprCommand(subArgs)
	case "help", "-h", "--help":
		printDeployUsage()
		return nil
	default:
		printDeployUsage()
		return fmt.Errorf("unknown deploy subcommand: %s", subcommand)
	}
}

func printDeployUsage() {
	fmt.Fprintf(os.Stderr, `Deploy and manage sidekick test environments

USAGE:
    sidekick deploy <subcommand> [arguments] [flags]

SUBCOMMANDS:
    cluster     Manage local Kubernetes clusters (Kind)
    dapr        Install and manage the Dapr control plane using Helm

EXAMPLES:
    # Complete workflow
    sidekick deploy cluster create --name sidekick-test --wait 60s
    sidekick deploy dapr install

    # Check status
    sidekick deploy dapr status

    # Clean up
    sidekick deploy dapr uninstall
    sidekick deploy cluster delete --name sidekick-test

Run 'sidekick deploy <subcommand> --help' for more information on a subcommand.
`)
}

// deployClusterCommand handles cluster management subcommands
func deployClusterCommand(args []string) error {
	if len(args) < 1 {
		printClusterUsage()
		return fmt.Errorf("no cluster subcommand specified")
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "create":
		return deployClusterCreate(actionArgs)
	case "delete":
		return deployClusterDelete(actionArgs)
	case "help", "-h", "--help":
		printClusterUsage()
		return nil
	default:
		printClusterUsage()
		return fmt.Errorf("unknown cluster action: %s", action)
	}
}

func printClusterUsage() {
	fmt.Fprintf(os.Stderr, `Manage local Kubernetes clusters using Kind

USAGE:
    sidekick deploy cluster <action> [flags]

ACTIONS:
    create      Create a new Kind cluster
    delete      Delete a Kind cluster

FLAGS:
    --name string   Cluster name (default "sidekick-test")

EXAMPLES:
    # Create cluster with default name
    sidekick deploy cluster create

    # Create cluster with custom name
    sidekick deploy cluster create --name sidekick-ci

    # Delete cluster
    sidekick deploy cluster delete --name sidekick-ci
`)
}

func deployClusterCreate(args []string) error {
	fs := flag.NewFlagSet("deploy cluster create", flag.ExitOnError)
	clusterName := fs.String("name", "sidekick-test", "Cluster name")
	wait := fs.Duration("wait", 0, "Wait for control plane to be ready")

	fs.Usage = printClusterUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Creating Kind cluster: %s\n", *clusterName)

	provider := cluster.NewProvider(
		cluster.ProviderWithLogger(cmd.NewLogger()),
	)

	if err := provider.Create(
		*clusterName,
		cluster.CreateWithWaitForReady(*wait),
	); err != nil {
		return fmt.Errorf("failed to create cluster: %w", err)
	}

	fmt.Printf("✓ Cluster '%s' created successfully\n", *clusterName)
	fmt.Printf("\nTo use this cluster:\n")
	fmt.Printf("  kubectl cluster-info --context kind-%s\n", *clusterName)
	return nil
}

func deployClusterDelete(args []string) error {
	fs := flag.NewFlagSet("deploy cluster delete", flag.ExitOnError)
	clusterName := fs.String("name", "sidekick-test", "Cluster name")
	kubeconfigPath := fs.String("kubeconfig", "", "Path to kubeconfig (defaults to standard location)")

	fs.Usage = printClusterUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Deleting Kind cluster: %s\n", *clusterName)

	provider := cluster.NewProvider(
		cluster.ProviderWithLogger(cmd.NewLogger()),
	)

	if err := provider.Delete(*clusterName, *kubeconfigPath); err != nil {
		return fmt.Errorf("failed to delete cluster: %w", err)
	}

	fmt.Printf("✓ Cluster '%s' deleted successfully\n", *clusterName)
	return nil
}

// deployDaprCommand handles Dapr control-plane installation
func deployDaprCommand(args []string) error {
	if len(args) < 1 {
		printDaprUsage()
		return fmt.Errorf("no subcommand specified")
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "install":
		return deployDaprInstall(actionArgs)
	case "upgrade":
		return deployDaprUpgrade(actionArgs)
	case "uninstall":
		return deployDaprUninstall(actionArgs)
	case "status":
		return deployDaprStatus(actionArgs)
	case "help", "-h", "--help":
		printDaprUsage()
		return nil
	default:
		printDaprUsage()
		return fmt.Errorf("unknown dapr action: %s", action)
	}
}

func printDaprUsage() {
	fmt.Fprintf(os.Stderr, `Install and manage the Dapr control plane using Helm

USAGE:
    sidekick deploy dapr <action> [flags]

ACTIONS:
    install     Install the Dapr control plane using Helm charts
    upgrade     Upgrade the Dapr release
    uninstall   Uninstall the Dapr release
    status      Show Dapr deployment status

FLAGS (install/upgrade):
    --release-name string     Helm release name (default "dapr")
    --namespace string        Kubernetes namespace (default "dapr-system")
    --ha                      Enable high-availability mode (default false)
    --wait                    Wait for deployment to complete (default true)
    --timeout duration        Wait timeout (default 5m)

EXAMPLES:
    # Install Dapr with default settings
    sidekick deploy dapr install

    # Install in HA mode
    sidekick deploy dapr install --ha

    # Check status
    sidekick deploy dapr status

    # Uninstall
    sidekick deploy dapr uninstall
`)
}

func deployDaprInstall(args []string) error {
	fs := flag.NewFlagSet("deploy dapr install", flag.ExitOnError)
	releaseName := fs.String("release-name", "dapr", "Helm release name")
	namespace := fs.String("namespace", "dapr-system", "Kubernetes namespace")
	ha := fs.Bool("ha", false, "Enable high-availability mode")
	wait := fs.Bool("wait", true, "Wait for deployment to complete")
	timeout := fs.Duration("timeout", 5*time.Minute, "Wait timeout")

	fs.Usage = printDaprUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Installing Dapr control plane (release: %s, namespace: %s)\n",
		*releaseName, *namespace)

	settings := cli.New()
	settings.SetNamespace(*namespace)

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(settings.RESTClientGetter(), *namespace,
		os.Getenv("HELM_DRIVER"), func(format string, v ...interface{}) {
			fmt.Printf(format+"\n", v...)
		}); err != nil {
		return fmt.Errorf("failed to initialize Helm: %w", err)
	}

	fmt.Println("Adding Dapr Helm repository...")
	if err := addHelmRepo(settings, "dapr", "https://dapr.github.io/helm-charts/"); err != nil {
		return fmt.Errorf("failed to add Helm repository: %w", err)
	}

	client := action.NewInstall(actionConfig)
	client.ReleaseName = *releaseName
	client.Namespace = *namespace
	client.CreateNamespace = true
	client.Wait = *wait
	client.Timeout = *timeout

	chartPath, err := client.ChartPathOptions.LocateChart("dapr/dapr", settings)
	if err != nil {
		return fmt.Errorf("failed to locate chart: %w", err)
	}

	chart, err := loader.Load(chartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}

	values := map[string]interface{}{
		"global": map[string]interface{}{
			"ha": map[string]interface{}{
				"enabled": *ha,
			},
		},
	}

	release, err := client.Run(chart, values)
	if err != nil {
		return fmt.Errorf("failed to install Dapr: %w", err)
	}

	fmt.Printf("✓ Dapr installed successfully (release: %s, status: %s)\n",
		release.Name, release.Info.Status)
	fmt.Printf("\nTo verify installation:\n")
	fmt.Printf("  sidekick deploy dapr status\n")
	return nil
}

func deployDaprUpgrade(args []string) error {
	fs := flag.NewFlagSet("deploy dapr upgrade", flag.ExitOnError)
	releaseName := fs.String("release-name", "dapr", "Helm release name")
	namespace := fs.String("namespace", "dapr-system", "Kubernetes namespace")
	wait := fs.Bool("wait", true, "Wait for upgrade to complete")
	timeout := fs.Duration("timeout", 5*time.Minute, "Wait timeout")

	fs.Usage = printDaprUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Upgrading Dapr (release: %s, namespace: %s)\n", *releaseName, *namespace)

	settings := cli.New()
	settings.SetNamespace(*namespace)

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(settings.RESTClientGetter(), *namespace,
		os.Getenv("HELM_DRIVER"), func(format string, v ...interface{}) {
			fmt.Printf(format+"\n", v...)
		}); err != nil {
		return fmt.Errorf("failed to initialize Helm: %w", err)
	}

	client := action.NewUpgrade(actionConfig)
	client.Namespace = *namespace
	client.Wait = *wait
	client.Timeout = *timeout

	chartPath, err := client.ChartPathOptions.LocateChart("dapr/dapr", settings)
	if err != nil {
		return fmt.Errorf("failed to locate chart: %w", err)
	}

	chart, err := loader.Load(chartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}

	release, err := client.Run(*releaseName, chart, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade Dapr: %w", err)
	}

	fmt.Printf("✓ Dapr upgraded successfully (release: %s, status: %s)\n",
		release.Name, release.Info.Status)
	return nil
}

func deployDaprUninstall(args []string) error {
	fs := flag.NewFlagSet("deploy dapr uninstall", flag.ExitOnError)
	releaseName := fs.String("release-name", "dapr", "Helm release name")
	namespace := fs.String("namespace", "dapr-system", "Kubernetes namespace")

	fs.Usage = printDaprUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Uninstalling Dapr (release: %s, namespace: %s)\n", *releaseName, *namespace)

	settings := cli.New()
	settings.SetNamespace(*namespace)

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(settings.RESTClientGetter(), *namespace,
		os.Getenv("HELM_DRIVER"), func(format string, v ...interface{}) {
			fmt.Printf(format+"\n", v...)
		}); err != nil {
		return fmt.Errorf("failed to initialize Helm: %w", err)
	}

	client := action.NewUninstall(actionConfig)
	_, err := client.Run(*releaseName)
	if err != nil {
		return fmt.Errorf("failed to uninstall Dapr: %w", err)
	}

	fmt.Printf("✓ Dapr uninstalled successfully\n")
	return nil
}

func deployDaprStatus(args []string) error {
	fs := flag.NewFlagSet("deploy dapr status", flag.ExitOnError)
	releaseName := fs.String("release-name", "dapr", "Helm release name")
	namespace := fs.String("namespace", "dapr-system", "Kubernetes namespace")

	fs.Usage = printDaprUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings := cli.New()
	settings.SetNamespace(*namespace)

	actionConfig := new(action.Configuration)
	if err := actionConfig.Init(settings.RESTClientGetter(), *namespace,
		os.Getenv("HELM_DRIVER"), func(format string, v ...interface{}) {
			fmt.Printf(format+"\n", v...)
		}); err != nil {
		return fmt.Errorf("failed to initialize Helm: %w", err)
	}

	client := action.NewStatus(actionConfig)
	release, err := client.Run(*releaseName)
	if err != nil {
		return fmt.Errorf("failed to get Dapr status: %w", err)
	}

	fmt.Printf("Release: %s\n", release.Name)
	fmt.Printf("Namespace: %s\n", release.Namespace)
	fmt.Printf("Status: %s\n", release.Info.Status)
	fmt.Printf("Version: %d\n", release.Version)
	fmt.Printf("Last deployed: %s\n", release.Info.LastDeployed.Format(time.RFC3339))

	fmt.Println("\nControl plane pods:")
	return printControlPlanePods(*namespace)
}

// printControlPlanePods lists the pods in the control-plane namespace
// so readiness problems are visible without reaching for kubectl.
func printControlPlanePods(namespace string) error {
	config, err := getKubeConfig()
	if err != nil {
		return fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	if len(pods.Items) == 0 {
		fmt.Printf("  (no pods found in namespace %s)\n", namespace)
		return nil
	}

	table := NewTableWriter([]string{"Pod", "Phase", "Ready", "Restarts"})
	for _, pod := range pods.Items {
		ready := 0
		restarts := int32(0)
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.Ready {
				ready++
			}
			restarts += cs.RestartCount
		}
		table.AddRow([]string{
			pod.Name,
			string(pod.Status.Phase),
			fmt.Sprintf("%d/%d", ready, len(pod.Spec.Containers)),
			fmt.Sprintf("%d", restarts),
		})
	}
	table.Print()

	for _, pod := range pods.Items {
		if pod.Status.Phase != corev1.PodRunning && pod.Status.Phase != corev1.PodSucceeded {
			fmt.Printf("\n⚠ Pod %s is %s\n", pod.Name, pod.Status.Phase)
		}
	}
	return nil
}

// addHelmRepo adds a Helm repository
func addHelmRepo(settings *cli.EnvSettings, name, url string) error {
	repoFile := settings.RepositoryConfig
	repoDir := filepath.Dir(repoFile)

	if err := os.MkdirAll(repoDir, 0o750); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	entry := &repo.Entry{
		Name: name,
		URL:  url,
	}

	r, err := repo.NewChartRepository(entry, getter.All(settings))
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	if _, err := r.DownloadIndexFile(); err != nil {
		return fmt.Errorf("failed to download repository index: %w", err)
	}

	repoFileData, err := repo.LoadFile(repoFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load repository file: %w", err)
	}
	if os.IsNotExist(err) {
		repoFileData = repo.NewFile()
	}

	repoFileData.Update(entry)

	if err := repoFileData.WriteFile(repoFile, 0o644); err != nil {
		return fmt.Errorf("failed to write repository file: %w", err)
	}

	fmt.Printf("✓ Repository '%s' added: %s\n", name, url)
	return nil
}

// getKubeConfig returns Kubernetes REST config
func getKubeConfig() (*rest.Config, error) {
	settings := cli.New()
	return settings.RESTClientGetter().ToRESTConfig()
}

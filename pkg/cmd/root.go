/*
Copyright © 2024 The kubestrap authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kubestrap/kubestrap/pkg/cmd/options"
)

var (
	cfgFile     string
	v           string
	jsonLogs    bool
	waitTimeout time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kubestrap",
	Short: "Bootstrap a single-node Kubernetes cluster on Ubuntu",
	Long: `Provisions a single-node Kubernetes cluster on an Ubuntu 22.04 host.
Prepares the host (swap, kernel modules, sysctl), installs containerd and
the pinned Kubernetes tools, runs kubeadm init and installs Calico and
MetalLB.`,
	Example: `> kubestrap up -U myuser -T mytoken`,
	Version: "v0.3.1", // <---VERSION--->
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return SetUpLogs(os.Stderr, v, jsonLogs)
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, options.Config, "", "config file (default is /etc/kubestrap.yaml)")
	rootCmd.PersistentFlags().StringVarP(&v, options.Verbosity, "v", logrus.InfoLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, options.Json, false, "Log messages in JSON")
	rootCmd.PersistentFlags().DurationVar(&waitTimeout, options.Timeout, 10*time.Minute, "Timeout for each readiness wait (0 waits forever)")
}

// waitContext bounds the readiness waits with the --timeout flag. A
// zero timeout means waiting forever, so no deadline is set.
func waitContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(parent, timeout)
	}
	return context.WithCancel(parent)
}

// initConfig reads in config file and ENV variables if set. A .env file
// in the working directory is loaded first so that credentials can be
// kept out of the shell history.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Could not load .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("/etc")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("kubestrap")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func SetUpLogs(out io.Writer, level string, json bool) error {
	logrus.SetOutput(out)
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	logrus.SetLevel(lvl)
	return nil
}

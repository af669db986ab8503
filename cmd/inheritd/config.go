package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

type daemonConfig struct {
	RPCEndpoint        string   `yaml:"rpcEndpoint"`
	DBDir              string   `yaml:"dbDir"`
	Keystore           string   `yaml:"keystore"`
	KeystorePassphrase string   `yaml:"keystorePassphrase"`
	WatchAccounts      []string `yaml:"watchAccounts"`
}

func initConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write a template config file to the config directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(configDir, 0700); err != nil {
				return err
			}
			path := filepath.Join(configDir, "inheritance.yaml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			template := &daemonConfig{
				RPCEndpoint: "ws://127.0.0.1:8546",
				DBDir:       "inheritdb",
				Keystore:    "keys/caller.json",
				WatchAccounts: []string{
					"0x0000000000000000000000000000000000000000",
				},
			}
			data, err := yaml.Marshal(template)
			if err != nil {
				return err
			}
			if err := ioutil.WriteFile(path, data, 0600); err != nil {
				return err
			}
			logger.Info().Str("path", path).Msg("Wrote config template")
			return nil
		},
	}
}

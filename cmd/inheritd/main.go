package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/celer-network/go-inheritance/chain"
	"github.com/celer-network/go-inheritance/db/badgerdb"
	"github.com/celer-network/go-inheritance/log"
	"github.com/celer-network/go-inheritance/registry"
	"github.com/celer-network/go-inheritance/utils"
	"github.com/celer-network/go-inheritance/watcher"
)

var (
	configDir  string
	dbDir      string
	rpcURL     string
	ksPath     string
	ksPassword string

	logger = log.NewLogger("inheritd")
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inheritd",
		Short: "Inheritance registry daemon and operator CLI",
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "config", "Config directory")
	rootCmd.PersistentFlags().StringVar(&dbDir, "db", "inheritdb", "Registry DB directory")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Ethereum RPC endpoint (overrides config)")
	rootCmd.PersistentFlags().StringVar(&ksPath, "keystore", "", "Keystore file of the caller")
	rootCmd.PersistentFlags().StringVar(&ksPassword, "passphrase", "", "Keystore passphrase")

	rootCmd.AddCommand(
		runCommand(),
		configureCommand(),
		revokeCommand(),
		authorizeCommand(),
		markCommand(),
		claimCommand(),
		statusCommand(),
		initConfigCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Send()
		os.Exit(1)
	}
}

func loadConfig() {
	viper.AddConfigPath(configDir)
	viper.SetConfigName("inheritance")
	if err := viper.MergeInConfig(); err != nil {
		logger.Warn().Err(err).Msg("No config file, relying on flags")
	}
	if rpcURL == "" {
		rpcURL = viper.GetString("rpcEndpoint")
	}
	if viper.GetString("dbDir") != "" && dbDir == "inheritdb" {
		dbDir = viper.GetString("dbDir")
	}
}

func newRegistry() (*registry.Registry, *ethclient.Client, func(), error) {
	loadConfig()
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	database, err := badgerdb.NewDB(dbDir)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}
	reg, err := registry.New(database, chain.NewRPCReader(client))
	if err != nil {
		client.Close()
		database.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		reg.Close()
		database.Close()
		client.Close()
	}
	return reg, client, cleanup, nil
}

func callerAddress() (common.Address, error) {
	if ksPath == "" {
		ksPath = viper.GetString("keystore")
		ksPassword = viper.GetString("keystorePassphrase")
	}
	if ksPath == "" {
		return common.Address{}, fmt.Errorf("no keystore configured")
	}
	return utils.AddressFromKeystore(ksPath, ksPassword)
}

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch tracked accounts and report claimable inheritances",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, client, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()

			w := watcher.New(reg, client)
			for _, hexAddr := range viper.GetStringSlice("watchAccounts") {
				w.Track(common.HexToAddress(hexAddr))
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				w.Stop()
			}()

			go func() {
				for ev := range w.Claimable() {
					logger.Info().Str("account", ev.Account.Hex()).
						Str("inheritor", ev.Inheritor.Hex()).Msg("Ready to claim")
				}
			}()

			return w.Start(ctx)
		},
	}
}

func configureCommand() *cobra.Command {
	var account, inheritor string
	var period uint64
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set or update the inheritance configuration for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			return reg.Configure(caller, common.HexToAddress(account),
				common.HexToAddress(inheritor), new(big.Int).SetUint64(period))
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Account to configure")
	cmd.Flags().StringVar(&inheritor, "inheritor", "", "Inheritor address")
	cmd.Flags().Uint64Var(&period, "period", 0, "Inactivity period in blocks")
	return cmd
}

func revokeCommand() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Clear the inheritance configuration for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			return reg.Revoke(caller, common.HexToAddress(account))
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Account to revoke")
	return cmd
}

func authorizeCommand() *cobra.Command {
	var signer string
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Delegate configuration rights to a secondary key",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			return reg.AuthorizeSigner(caller, common.HexToAddress(signer))
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "Delegate address, zero to clear")
	return cmd
}

func markCommand() *cobra.Command {
	var account, headerPath, proofPath string
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Start the inactivity clock with a header and state proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()
			headerBytes, err := loadHeaderFile(headerPath)
			if err != nil {
				return err
			}
			state, prf, err := loadProofFile(proofPath)
			if err != nil {
				return err
			}
			return reg.MarkInactivityStart(context.Background(),
				common.HexToAddress(account), headerBytes, state, prf)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Dormant account")
	cmd.Flags().StringVar(&headerPath, "header", "", "File with hex-encoded raw header bytes")
	cmd.Flags().StringVar(&proofPath, "proof", "", "JSON file with the account state proof")
	return cmd
}

func claimCommand() *cobra.Command {
	var account, headerPath, proofPath string
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim inheritance after the inactivity period elapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			headerBytes, err := loadHeaderFile(headerPath)
			if err != nil {
				return err
			}
			state, prf, err := loadProofFile(proofPath)
			if err != nil {
				return err
			}
			return reg.Claim(context.Background(), caller,
				common.HexToAddress(account), headerBytes, state, prf)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Dormant account")
	cmd.Flags().StringVar(&headerPath, "header", "", "File with hex-encoded raw header bytes")
	cmd.Flags().StringVar(&proofPath, "proof", "", "JSON file with the account state proof")
	return cmd
}

func statusCommand() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the inheritance status of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, cleanup, err := newRegistry()
			if err != nil {
				return err
			}
			defer cleanup()

			addr := common.HexToAddress(account)
			status, err := reg.CanClaim(context.Background(), addr)
			if err != nil {
				return err
			}
			claimed, err := reg.IsClaimed(addr)
			if err != nil {
				return err
			}
			fmt.Printf("account:          %s\n", addr.Hex())
			fmt.Printf("configured:       %v\n", status.IsConfigured)
			fmt.Printf("inheritor:        %s\n", status.Inheritor.Hex())
			fmt.Printf("claimed:          %v\n", claimed)
			fmt.Printf("canClaim:         %v\n", status.CanClaim)
			fmt.Printf("blocksRemaining:  %s\n", status.BlocksRemaining)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "Account to query")
	return cmd
}

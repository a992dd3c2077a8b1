package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/bwise1/reportnow/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyServer = "server"
	keyToken  = "token"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("REPORTNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Submit incident reports and update their status",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String(keyServer, "http://localhost:8080", "report API base URL (REPORTNOW_SERVER)")
	root.PersistentFlags().String(keyToken, "", "admin bearer token for status updates (REPORTNOW_TOKEN)")
	_ = v.BindPFlag(keyServer, root.PersistentFlags().Lookup(keyServer))
	_ = v.BindPFlag(keyToken, root.PersistentFlags().Lookup(keyToken))

	newClient := func() (*client.Client, error) {
		return client.New(v.GetString(keyServer), v.GetString(keyToken))
	}

	root.AddCommand(newSubmitCmd(newClient), newStatusCmd(newClient))
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

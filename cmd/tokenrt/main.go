package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/solwasm/tokenrt/cmd/tokenrt/decode"
	"github.com/solwasm/tokenrt/cmd/tokenrt/inspect"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var cmd = cobra.Command{
	Use:   "tokenrt",
	Short: "Token program runtime tooling",
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		&decode.Cmd,
		&inspect.Cmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

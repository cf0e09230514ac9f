package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"itemname-api/application/ports"
	"itemname-api/infrastructure/persistence/dynamodb"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalog is a source that can answer queries and enumerate every item
type catalog interface {
	ports.ItemRepository
	ports.ItemLister
}

// cli carries state shared by every subcommand
type cli struct {
	out     io.Writer
	logger  *zap.Logger
	verbose bool

	// openTable returns the catalog stored in a DynamoDB table
	openTable func(ctx context.Context, table, region string, logger *zap.Logger) (catalog, error)

	// create opens an export destination for writing
	create func(name string) (io.WriteCloser, error)
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{
		out:       out,
		logger:    zap.NewNop(),
		openTable: openDynamoDBTable,
		create:    createFile,
	}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "itemctl",
		Short:        "Inspect and export the item catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !c.verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		c.checkCmd(),
		c.exportCmd(),
		c.listCmd(),
		c.searchCmd(),
	)
	return root
}

// printJSON writes v the way the HTTP API renders it
func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openDynamoDBTable(ctx context.Context, table, region string, logger *zap.Logger) (catalog, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := awsdynamodb.NewFromConfig(awsCfg)
	return dynamodb.NewItemRepository(client, table, dynamodb.DefaultRetryConfig(), logger), nil
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

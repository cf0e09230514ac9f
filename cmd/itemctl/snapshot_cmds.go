package main

import (
	"errors"
	"fmt"
	"os"

	"itemname-api/domain/core/entities"
	"itemname-api/infrastructure/persistence/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) checkCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a catalog snapshot",
		Long:  `Decodes every record of a snapshot file and fails on the first record the service could not serve.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := snapshot.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s: %d items ok\n", path, repo.Count())
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", snapshot.DefaultPath, "snapshot file")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		table  string
		region string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a DynamoDB catalog table as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return errors.New("--table or TABLE_NAME is required")
			}
			ctx := cmd.Context()

			source, err := c.openTable(ctx, table, region, c.logger)
			if err != nil {
				return fmt.Errorf("open table %s: %w", table, err)
			}

			items, err := source.All(ctx)
			if err != nil {
				return err
			}

			if err := c.writeExport(out, items); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			c.logger.Info("Exported catalog",
				zap.String("table", table),
				zap.String("out", out),
				zap.Int("count", len(items)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", os.Getenv("TABLE_NAME"), "DynamoDB table name")
	cmd.Flags().StringVar(&region, "region", os.Getenv("AWS_REGION"), "AWS region")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

// writeExport writes items to c.out, or to a new file unless path is "-". An
// error from closing the file fails the export.
func (c *cli) writeExport(path string, items []*entities.Item) (err error) {
	if path == "-" {
		return snapshot.Write(c.out, items)
	}

	f, err := c.create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return snapshot.Write(f, items)
}

package main

import (
	"os"

	"itemname-api/application/ports"
	"itemname-api/application/queries"
	querybus "itemname-api/application/queries/bus"
	queryhandlers "itemname-api/application/queries/handlers"
	"itemname-api/infrastructure/persistence/snapshot"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/spf13/cobra"
)

// queryFlags copies the flags that were set on the command line into the
// parameter map the HTTP API would receive. Unset flags stay absent so the
// same "is required" errors apply.
func queryFlags(cmd *cobra.Command, names ...string) map[string]string {
	params := make(map[string]string, len(names))
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, _ := cmd.Flags().GetString(name)
		params[name] = value
	}
	return params
}

// sourceFlags selects where queries are answered from
type sourceFlags struct {
	file   string
	table  string
	region string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", snapshot.DefaultPath, "snapshot file")
	cmd.Flags().StringVar(&f.table, "table", "", "query this DynamoDB table instead of a snapshot")
	cmd.Flags().StringVar(&f.region, "region", os.Getenv("AWS_REGION"), "AWS region")
}

func (c *cli) open(cmd *cobra.Command, src sourceFlags) (ports.ItemRepository, error) {
	if src.table != "" {
		return c.openTable(cmd.Context(), src.table, src.region, c.logger)
	}
	return snapshot.Load(src.file)
}

// ask runs query against the selected source and prints the response body
// the HTTP API would have sent.
func (c *cli) ask(cmd *cobra.Command, src sourceFlags, query querybus.Query) error {
	repo, err := c.open(cmd, src)
	if err != nil {
		return err
	}

	b := querybus.NewQueryBus()
	if err := queryhandlers.Register(b, repo, c.logger); err != nil {
		return err
	}

	result, err := b.Ask(cmd.Context(), query)
	if err != nil {
		return c.fail(err)
	}
	return c.printJSON(result)
}

// fail prints the error envelope for err and returns err
func (c *cli) fail(err error) error {
	_, body := pkgerrors.NewErrorHandler(c.logger, true).Response(err)
	if printErr := c.printJSON(body); printErr != nil {
		return printErr
	}
	return err
}

func (c *cli) listCmd() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Look up items by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queries.ParseListItemsQuery(queryFlags(cmd, queries.ParamIDs))
			if err != nil {
				return c.fail(err)
			}
			return c.ask(cmd, src, query)
		},
	}
	src.register(cmd)
	cmd.Flags().String(queries.ParamIDs, "", "comma separated item ids")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search item names in one language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queries.ParseSearchItemsQuery(queryFlags(cmd, queries.ParamLanguage, queries.ParamString))
			if err != nil {
				return c.fail(err)
			}
			return c.ask(cmd, src, query)
		},
	}
	src.register(cmd)
	cmd.Flags().String(queries.ParamLanguage, "", "one of de, en, fr, ja")
	cmd.Flags().String(queries.ParamString, "", "substring to match, case-sensitive")
	return cmd
}

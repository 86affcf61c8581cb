package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func listCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and print all products",
		Args:  cobra.NoArgs,
		RunE: withSession(configFile, func(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
			result := s.deps.Store.FetchProducts(ctx)
			if result.Success {
				result.Data = s.deps.Store.Products()
			}
			return printResult(cmd.OutOrStdout(), result)
		}),
	}
}

// productFlags are the product fields settable from the command line.
type productFlags struct {
	name   string
	image  string
	price  string
	fields []string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.image, "image", "", "product image URL")
	cmd.Flags().StringVar(&f.price, "price", "", "product price, e.g. 19.99")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "additional field as key=value; JSON values are kept as is")
}

func createCmd(configFile *string) *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: withSession(configFile, func(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
			p, err := flags.product()
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.deps.Store.CreateProduct(ctx, p))
		}),
	}
	flags.register(cmd)
	return cmd
}

func updateCmd(configFile *string) *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(configFile, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s.deps.Store.UpdateProduct(ctx, args[0], patch))
		}),
	}
	flags.register(cmd)
	return cmd
}

func deleteCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(configFile, func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			return printResult(cmd.OutOrStdout(), s.deps.Store.DeleteProduct(ctx, args[0]))
		}),
	}
}

// product builds a creation candidate. Missing values are left empty for the store to reject.
func (f *productFlags) product() (store.Product, error) {
	p := store.Product{Name: f.name, Image: f.image}
	if f.price != "" {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return store.Product{}, fmt.Errorf("invalid price %q: %w", f.price, err)
		}
		p.Price = price
	}
	extra, err := parseFields(f.fields)
	if err != nil {
		return store.Product{}, err
	}
	if len(extra) > 0 {
		p.Extra = extra
	}
	return p, nil
}

// patch contains only the flags set on the command line.
func (f *productFlags) patch(cmd *cobra.Command) (store.Patch, error) {
	patch := store.Patch{}
	if cmd.Flags().Changed("name") {
		patch["name"] = f.name
	}
	if cmd.Flags().Changed("image") {
		patch["image"] = f.image
	}
	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", f.price, err)
		}
		patch["price"] = json.Number(price.String())
	}
	extra, err := parseFields(f.fields)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		patch[k] = v
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("nothing to update: set at least one of --name, --image, --price or --field")
	}
	return patch, nil
}

// parseFields turns key=value pairs into JSON values. A value that is not valid JSON is taken as a string.
func parseFields(pairs []string) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", pair)
		}
		if json.Valid([]byte(value)) {
			fields[key] = json.RawMessage(value)
			continue
		}
		quoted, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("invalid field %q: %w", pair, err)
		}
		fields[key] = quoted
	}
	return fields, nil
}

// printResult writes result as JSON and turns an unsuccessful result into errUnsuccessful.
func printResult(w io.Writer, result store.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if !result.Success {
		return errUnsuccessful
	}
	return nil
}

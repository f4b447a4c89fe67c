package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinchodeluca/scann-url/internal/catalog"
	"github.com/tinchodeluca/scann-url/internal/producturl"
)

func newProductsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect the product catalog",
	}
	cmd.AddCommand(newProductsListCommand(opts))
	return cmd
}

func newProductsListCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the products that would be checked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.load(); err != nil {
				return err
			}
			path := opts.cfg.Monitor.ProductsFile
			if file != "" {
				path = file
			}

			products, err := catalog.NewLoader(path, opts.logger).Load()
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No products in %s\n", path)
				return nil
			}

			renderProducts(cmd.OutOrStdout(), products, func(raw string) string {
				if canonical, canonErr := producturl.Canonicalize(raw); canonErr == nil {
					return canonical
				}
				return raw
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file, overrides monitor.products_file")
	return cmd
}

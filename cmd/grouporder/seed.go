package main

import (
	"context"
	"fmt"
	"os"

	"grouporder/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout accepted by `grouporder seed`:
//
//	categories: [Drinks, Bakery]
//	shops:
//	  - name: Cafe
//	    phone: "555-0100"
//	    items:
//	      - {name: Latte, price: 15000, category: Drinks}
type catalogFile struct {
	Categories []string      `yaml:"categories"`
	Shops      []catalogShop `yaml:"shops"`
}

type catalogShop struct {
	Name  string        `yaml:"name"`
	Phone string        `yaml:"phone"`
	Items []catalogItem `yaml:"items"`
}

type catalogItem struct {
	Name     string `yaml:"name"`
	Price    int64  `yaml:"price"`
	Category string `yaml:"category"`
}

type seedResult struct {
	Categories int
	Shops      int
	Items      int
}

func parseCatalog(data []byte) (*catalogFile, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &file, nil
}

func newSeedCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load shops, categories and items from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read catalog: %w", err)
			}
			file, err := parseCatalog(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := openBackend(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer b.Close(a.log)

			res, err := seedCatalog(ctx, b.useCases(a.cfg, a.log).Catalog, file, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d shops, %d items\n", res.Categories, res.Shops, res.Items)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "catalog.yaml", "catalog file")
	return cmd
}

// seedCatalog creates the catalog. Categories that already exist are reused
// by name so seeding twice only adds shops and items.
func seedCatalog(ctx context.Context, catalog domain.CatalogUseCase, file *catalogFile, logger *logrus.Logger) (seedResult, error) {
	var res seedResult

	existing, err := catalog.ListCategories(ctx)
	if err != nil {
		return res, err
	}
	categoryIDs := make(map[string]string, len(existing))
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}

	for _, name := range file.Categories {
		if _, ok := categoryIDs[name]; ok {
			continue
		}
		created, err := catalog.CreateCategory(ctx, &domain.Category{Name: name})
		if err != nil {
			return res, fmt.Errorf("category %q: %w", name, err)
		}
		categoryIDs[created.Name] = created.ID
		res.Categories++
	}

	for _, s := range file.Shops {
		shop, err := catalog.CreateShop(ctx, &domain.Shop{Name: s.Name, Phone: s.Phone})
		if err != nil {
			return res, fmt.Errorf("shop %q: %w", s.Name, err)
		}
		res.Shops++

		for _, it := range s.Items {
			categoryID, ok := categoryIDs[it.Category]
			if !ok {
				return res, fmt.Errorf("item %q: unknown category %q", it.Name, it.Category)
			}
			_, err := catalog.CreateItem(ctx, &domain.Item{
				Name:       it.Name,
				Price:      it.Price,
				ShopID:     shop.ID,
				CategoryID: categoryID,
			})
			if err != nil {
				return res, fmt.Errorf("item %q: %w", it.Name, err)
			}
			res.Items++
		}
	}

	logger.WithFields(logrus.Fields{
		"categories": res.Categories,
		"shops":      res.Shops,
		"items":      res.Items,
	}).Info("Catalog seeded.")
	return res, nil
}

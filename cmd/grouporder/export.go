package main

import (
	"fmt"

	"grouporder/internal/domain"
	"grouporder/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// exportFile is the catalog layout read by `grouporder seed` followed by the
// orders and what each participant picked. seed ignores the orders section.
type exportFile struct {
	catalogFile `yaml:",inline"`
	Orders      []exportOrder `yaml:"orders,omitempty"`
}

type exportOrder struct {
	Name         string              `yaml:"name"`
	Shop         string              `yaml:"shop"`
	Owner        string              `yaml:"owner"`
	Participants []exportParticipant `yaml:"participants"`
	GrandTotal   int64               `yaml:"grand_total"`
}

type exportParticipant struct {
	User     string   `yaml:"user"`
	Items    []string `yaml:"items,omitempty"`
	Subtotal int64    `yaml:"subtotal"`
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the catalog and every order as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := openBackend(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer b.Close(a.log)

			snap, err := usecase.NewSnapshotLoader(b.store).Load(ctx)
			if err != nil {
				return err
			}
			file := exportSnapshot(snap)
			a.log.WithFields(logrus.Fields{
				"shops":  len(file.Shops),
				"orders": len(file.Orders),
			}).Info("Snapshot exported.")

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(file); err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			return enc.Close()
		},
	}
}

// exportSnapshot names every reference by what a person would type into a
// catalog file: categories and shops by name, users by email.
func exportSnapshot(snap domain.Snapshot) exportFile {
	var file exportFile

	categoryNames := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		categoryNames[c.ID] = c.Name
		file.Categories = append(file.Categories, c.Name)
	}

	shopNames := make(map[string]string, len(snap.Shops))
	for _, s := range snap.Shops {
		shopNames[s.ID] = s.Name
		shop := catalogShop{Name: s.Name, Phone: s.Phone}
		for _, it := range snap.Items {
			if it.ShopID != s.ID {
				continue
			}
			shop.Items = append(shop.Items, catalogItem{
				Name:     it.Name,
				Price:    it.Price,
				Category: nameOr(categoryNames, it.CategoryID),
			})
		}
		file.Shops = append(file.Shops, shop)
	}

	emails := snap.UserEmails()
	for _, o := range snap.Orders {
		summary, _ := snap.Summary(o.ID)
		order := exportOrder{
			Name:       o.Name,
			Shop:       nameOr(shopNames, o.ShopID),
			Owner:      nameOr(emails, o.UserID),
			GrandTotal: summary.GrandTotal,
		}
		for _, p := range summary.Participants {
			order.Participants = append(order.Participants, exportParticipant{
				User:     nameOr(emails, p.UserID),
				Items:    p.ItemNames,
				Subtotal: p.Subtotal,
			})
		}
		file.Orders = append(file.Orders, order)
	}
	return file
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

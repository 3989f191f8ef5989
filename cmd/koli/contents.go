package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	domkoli "github.com/jhoicas/koli-api/internal/domain/koli"
)

func newContentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contents <koli-no>",
		Short: "Lista el contenido actual de una koli",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			loc, err := e.cfg.Report.Location()
			if err != nil {
				return err
			}
			uc := appkoli.NewDeletionUseCase(e.client, e.log, e.cfg.Inventory.Timeout())
			v, err := uc.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-20s %6s  %-16s  %s\n", "SKU", "ADET", "BARKOD", "TARIH")
			for _, l := range v.Lines {
				fmt.Fprintf(w, "%-20s %6d  %-16s  %s\n", l.SKU, l.Quantity, l.Barcode, domkoli.FormatExportDate(l.CreationDate, loc))
			}
			fmt.Fprintf(w, "%d líneas, %d unidades\n", len(v.Lines), v.Total)
			return nil
		},
	}
}

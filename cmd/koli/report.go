package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	appkoli "github.com/jhoicas/koli-api/internal/application/koli"
	"github.com/jhoicas/koli-api/internal/infrastructure/pdf"
	"github.com/jhoicas/koli-api/internal/infrastructure/xlsx"
)

func newReportCmd() *cobra.Command {
	var start, end, format, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Exporta el reporte de kolis a PDF o XLSX",
		Long: `Descarga el histórico completo del servicio de inventario, lo filtra por días
calendario (ambos extremos inclusive, en REPORT_TIMEZONE) y escribe el archivo.
Sin --start y --end se exporta todo el histórico.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			loc, err := e.cfg.Report.Location()
			if err != nil {
				return err
			}
			uc := appkoli.NewReportUseCase(e.client, e.log, loc, e.cfg.Inventory.Timeout())
			uc.RegisterRenderer("pdf", pdf.NewMarotoReportRenderer())
			uc.RegisterRenderer("xlsx", xlsx.NewReportRenderer())

			ctx := cmd.Context()
			if _, err := uc.Refresh(ctx); err != nil {
				return err
			}
			if start != "" || end != "" {
				from, to, err := parseRange(start, end, loc)
				if err != nil {
					return err
				}
				res, err := uc.Filter(ctx, from, to)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), res.Notice.Message)
			}

			data, name, _, err := uc.Export(ctx, format)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("escribir %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "desde (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "hasta (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "formato: pdf | xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo de salida (por defecto reporte_kolis_<fecha>.<ext>)")
	return cmd
}

// parseRange exige ambas fechas: un rango a medias no filtra.
func parseRange(start, end string, loc *time.Location) (*time.Time, *time.Time, error) {
	if start == "" || end == "" {
		return nil, nil, fmt.Errorf("seleccione ambas fechas (--start y --end)")
	}
	from, err := time.ParseInLocation("2006-01-02", start, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("--start inválido: %w", err)
	}
	to, err := time.ParseInLocation("2006-01-02", end, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("--end inválido: %w", err)
	}
	return &from, &to, nil
}

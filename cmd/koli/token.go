package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/koli-api/pkg/config"
	"github.com/jhoicas/koli-api/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		operator int64
		role     string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de operador firmado con JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if operator <= 0 {
				return fmt.Errorf("--operator es obligatorio")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, operator, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&operator, "operator", 0, "id del operador (createdBy en el servicio)")
	cmd.Flags().StringVar(&role, "role", "operador", "rol: operador | supervisor")
	return cmd
}

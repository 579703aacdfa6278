package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/sg-panel/internal/application/report"
	"github.com/jhoicas/sg-panel/internal/application/view"
	"github.com/jhoicas/sg-panel/internal/domain"
	"github.com/jhoicas/sg-panel/internal/domain/entity"
	"github.com/jhoicas/sg-panel/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/sg-panel/internal/infrastructure/pdf"
)

func parseKind(s string) (entity.Kind, error) {
	kind, ok := entity.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("%w: %q (use products, clients, users o categories)", domain.ErrUnknownKind, s)
	}
	return kind, nil
}

var listTitles = map[entity.Kind]string{
	entity.KindProducts:   "Produtos",
	entity.KindClients:    "Clientes",
	entity.KindUsers:      "Usuários",
	entity.KindCategories: "Categorias",
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "Lista products, clients, users o categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			ctrl, done, err := openPanel(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()

			if err := ctrl.LoadCollection(cmd.Context(), kind); err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), renderNotices(ctrl.Notices()))
				return err
			}
			table, err := ctrl.Render(kind)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(listTitles[kind], table))
			return nil
		},
	}
}

func newSaveCmd(opts *options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "save <kind> [id]",
		Short: "Crea un registro, o lo actualiza si se indica el id",
		Example: `  sgctl save products --set name=Martelo --set price=19,90 --set stock=3
  sgctl save clients k1 --set phone="11 5555-0000"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			values, err := parseSets(sets)
			if err != nil {
				return err
			}
			ctrl, done, err := openPanel(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()

			var id entity.ID
			if len(args) == 2 {
				id = entity.ID(args[1])
				// El editor se rellena con el registro cargado.
				if err := ctrl.LoadCollection(cmd.Context(), kind); err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), renderNotices(ctrl.Notices()))
					return err
				}
			}
			if err := ctrl.OpenEditor(kind, id); err != nil {
				return err
			}
			merged := ctrl.Editor().Values
			for k, v := range values {
				merged[k] = v
			}
			if err := ctrl.SubmitEditor(cmd.Context(), kind, merged); err != nil {
				if msg := ctrl.Editor().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNotices(ctrl.Notices()))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "campo=valor (repetible)")
	return cmd
}

// parseSets convierte "campo=valor" en valores de formulario.
func parseSets(sets []string) (view.FormValues, error) {
	values := view.FormValues{}
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: --set %q, se espera campo=valor", domain.ErrInvalidInput, s)
		}
		values[k] = v
	}
	return values, nil
}

func newDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Borra un registro (pide confirmación salvo con --yes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			ctrl, done, err := openPanel(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()

			confirm := view.Always
			if !yes {
				confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			err = ctrl.DeleteRecord(cmd.Context(), kind, entity.ID(args[1]), confirm)
			if errors.Is(err, domain.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Cancelado."))
				return nil
			}
			notices := renderNotices(ctrl.Notices())
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), notices)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), notices)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}

// promptConfirm pregunta en la terminal; sólo "s", "sim", "y" o "yes" confirman.
func promptConfirm(in io.Reader, out io.Writer) view.Confirm {
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [s/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return true
		}
		return false
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Exporta el relatório de products o clients en PDF o CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if !report.Exportable(kind) {
				return fmt.Errorf("%w: no hay relatório de %s", domain.ErrUnknownKind, kind)
			}
			f, ok := report.ParseFormat(format)
			if !ok {
				return fmt.Errorf("%w: formato %q (use pdf o csv)", domain.ErrInvalidInput, format)
			}
			ctrl, done, err := openPanel(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer done()

			svc := report.NewService(infrapdf.NewMarotoPDFGenerator(), csvexport.New())
			exp, err := svc.Export(cmd.Context(), ctrl, kind, f)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), renderNotices(ctrl.Notices()))
				return err
			}
			if out == "" {
				out = exp.Filename
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(exp.Data)
				return err
			}
			if err := os.WriteFile(out, exp.Data, 0o644); err != nil {
				return fmt.Errorf("escribir %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Relatório guardado en %s (%d bytes)", out, len(exp.Data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "pdf o csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo de salida (\"-\" para stdout; por defecto el nombre del relatório)")
	return cmd
}

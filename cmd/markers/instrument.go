// cmd/markers/instrument.go
package main

import (
	"github.com/Corphon/LessonPlanner/internal/models"
	"github.com/Corphon/LessonPlanner/internal/services"
	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/spf13/cobra"
)

func newInstrumentCmd() *cobra.Command {
	var req models.InstrumentRequest
	var out string

	cmd := &cobra.Command{
		Use:   "instrument",
		Short: "Render an assessment instrument",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			instrument, err := services.NewInstrumentService(utils.GetLogger()).Generate(req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out, instrument)
		},
	}
	cmd.Flags().StringVar(&req.Tipo, "tipo", "Lista de cotejo", "instrument type")
	cmd.Flags().StringVar(&req.Tema, "tema", "", "lesson topic")
	cmd.Flags().StringVar(&req.Fecha, "fecha", "", "date printed on the instrument")
	cmd.Flags().StringArrayVar(&req.Capacidades, "capacidad", nil, "capacity to turn into an indicator (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file")
	_ = cmd.MarkFlagRequired("tema")
	return cmd
}

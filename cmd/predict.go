package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"robotoff/internal/logger"
	"robotoff/internal/ocr"
	"robotoff/internal/prediction"
	"robotoff/pkg/models"
)

var predictCmd = &cobra.Command{
	Use:   "predict [ocr-json-file]",
	Short: "Mine predictions from an OCR result envelope",
	Long: `Run the prediction extractors over a stored OCR result envelope
(the JSON produced by 'robotoff ocr') and output the mined predictions.

By default every extractor runs. Use --types to restrict the run to a
comma-separated subset, e.g. --types product_weight,expiration_date.`,
	Example: `  # Mine everything from an archived envelope
  robotoff predict front_fr.json

  # Only weights and dates, tagged with the product barcode
  robotoff predict front_fr.json --types product_weight,expiration_date --barcode 3270190205685

  # Save predictions to a file
  robotoff predict front_fr.json -o predictions.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	predictCmd.Flags().String("types", "", "Comma-separated prediction types to extract (default: all)")
	predictCmd.Flags().String("barcode", "", "Product barcode to attach to each prediction")
	predictCmd.Flags().String("source-image", "", "Source image path to attach to each prediction")
}

func runPredict(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("predict")

	outputPath, _ := cmd.Flags().GetString("output")
	typesFlag, _ := cmd.Flags().GetString("types")
	barcode, _ := cmd.Flags().GetString("barcode")
	sourceImage, _ := cmd.Flags().GetString("source-image")

	ocrPath := args[0]

	log.Info().
		Str("file", ocrPath).
		Str("types", typesFlag).
		Msg("Starting prediction extraction")

	data, err := os.ReadFile(ocrPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", ocrPath).
			Msg("Failed to read OCR file")
		return fmt.Errorf("failed to read OCR file: %w", err)
	}

	doc, err := ocr.FromJSON(data)
	if err != nil {
		return handlePredictError(err, ocrPath, log)
	}

	types, err := parsePredictionTypes(typesFlag)
	if err != nil {
		return err
	}

	startTime := time.Now()
	predictions, err := prediction.ExtractAll(doc, types...)
	if err != nil {
		log.Error().Err(err).Msg("Prediction extraction failed")
		return fmt.Errorf("prediction extraction failed: %w", err)
	}

	for i := range predictions {
		if barcode != "" {
			predictions[i].Barcode = barcode
		}
		if sourceImage != "" {
			predictions[i].SourceImage = sourceImage
		}
	}

	log.Info().
		Int("predictions", len(predictions)).
		Dur("duration", time.Since(startTime)).
		Msg("Prediction extraction completed successfully")

	outputData, err := json.MarshalIndent(predictions, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal predictions")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Predictions written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

// parsePredictionTypes validates the --types flag against the extractor registry.
func parsePredictionTypes(typesFlag string) ([]models.PredictionType, error) {
	if typesFlag == "" {
		return nil, nil
	}

	var types []models.PredictionType
	for _, raw := range strings.Split(typesFlag, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		predictionType := models.PredictionType(name)
		if _, ok := prediction.Extractors[predictionType]; !ok {
			return nil, fmt.Errorf("unknown prediction type %q", name)
		}
		types = append(types, predictionType)
	}
	return types, nil
}

// handlePredictError maps OCR parsing errors to user-friendly messages.
func handlePredictError(err error, ocrPath string, log zerolog.Logger) error {
	log.Error().
		Err(err).
		Str("file", ocrPath).
		Msg("Failed to parse OCR file")

	switch {
	case errors.Is(err, ocr.ErrInvalidJSON):
		return fmt.Errorf("invalid OCR JSON in %s. The file must be the raw Vision API envelope produced by 'robotoff ocr'", ocrPath)
	case errors.Is(err, ocr.ErrNoResponses), errors.Is(err, ocr.ErrEmptyResponses):
		return fmt.Errorf("OCR file %s contains no annotation responses", ocrPath)
	case errors.Is(err, ocr.ErrResponseError):
		return fmt.Errorf("OCR file %s contains a failed annotation response: %w", ocrPath, err)
	default:
		return fmt.Errorf("failed to parse OCR file %s: %w", ocrPath, err)
	}
}

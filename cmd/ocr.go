package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"robotoff/internal/logger"
	"robotoff/internal/vision"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Annotate a product image with Google Cloud Vision",
	Long: `Annotate a product image using the Google Cloud Vision API and write
the raw JSON result envelope.

The envelope keeps every annotation the extractors consume: structured
document text, logos, labels, safe-search and face signals. Archive it
next to the image and re-run 'robotoff predict' over it whenever the
extraction rules change, without paying for a second API call.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Annotate an image, envelope to stdout
  robotoff ocr front_fr.jpg

  # Archive the envelope next to the image
  robotoff ocr front_fr.jpg -o front_fr.json

  # Annotate with a custom timeout
  robotoff ocr front_fr.jpg --timeout 120`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	log.Info().
		Str("file", imagePath).
		Str("output", outputPath).
		Int("timeout", timeoutSecs).
		Msg("Starting image annotation")

	imageData, err := readImageFile(imagePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	client, err := createVisionClient(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close Vision client")
		}
	}()

	startTime := time.Now()
	envelope, err := client.AnnotateImage(ctx, imageData)
	if err != nil {
		return handleAnnotationError(err, log)
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Int("envelope_bytes", len(envelope)).
		Msg("Image annotation completed successfully")

	if outputPath != "" {
		if err := os.WriteFile(outputPath, envelope, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(envelope)).
			Msg("OCR envelope written to file")
		return nil
	}

	if _, err := os.Stdout.Write(envelope); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

// readImageFile validates the image path and loads its content.
func readImageFile(imagePath string, log zerolog.Logger) ([]byte, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > vision.MaxImageSizeBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", vision.MaxImageSizeBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), int64(vision.MaxImageSizeBytes))
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to read image file")
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling annotation")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// createVisionClient creates and configures the Vision client
func createVisionClient(ctx context.Context, log zerolog.Logger) (*vision.Client, error) {
	hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""

	if !hasCredentials {
		log.Error().Msg("Google Cloud credentials not configured")
		return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
			"2. Export GOOGLE_CREDENTIALS with inline JSON:\n" +
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n" +
			"3. Use Application Default Credentials (if gcloud is configured):\n" +
			"   gcloud auth application-default login\n\n" +
			"4. Check that your .env file contains the credentials variables")
	}

	client, err := vision.NewClient(ctx)
	if err != nil {
		if errors.Is(err, vision.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials validation failed")
			return nil, fmt.Errorf("Google Cloud credentials validation failed. Please verify:\n\n"+
				"1. Credentials file exists and is readable\n"+
				"2. JSON format is valid\n"+
				"3. Service account has proper permissions\n\n"+
				"Original error: %w", err)
		}
		log.Error().
			Err(err).
			Msg("Failed to create Vision client")
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}

	log.Debug().Msg("Vision client created successfully")
	return client, nil
}

// handleAnnotationError provides user-friendly error messages for Vision failures
func handleAnnotationError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Image annotation failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("annotation timed out. Try increasing --timeout or processing a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("annotation was canceled")
	case errors.Is(err, vision.ErrImageTooLarge):
		return fmt.Errorf("image file is too large (maximum 20MB). Try resizing or compressing the image")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "invalid_rapt") ||
		strings.Contains(errStr, "auth:") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n"+
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path:\n"+
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
			"2. Or set GOOGLE_CREDENTIALS with inline JSON:\n"+
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n"+
			"3. Ensure the service account has 'Cloud Vision API User' role\n\n"+
			"4. If using Application Default Credentials, run:\n"+
			"   gcloud auth application-default login\n\n"+
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account has the 'Cloud Vision API User' role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud Vision API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, vision.ErrAnnotationFailed):
		return fmt.Errorf("image annotation failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("image annotation failed: %w", err)
	}
}

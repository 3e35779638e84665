package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file-or-folder> [file-or-folder...]",
	Short: "Build the page archive from files on disk",
	Long: `Build the photobook page archive from photos and PDF inserts on disk.

Files are used in the order given. Folders contribute their supported files
sorted by name. The first file becomes the cover.
Supported formats: jpg, jpeg, png, gif, bmp, webp, pdf

Example:
  photobook export --preset classic -o book.zip ./photos
  photobook export --pages 8 --size A5 --fit pad cover.jpg ./middle back.pdf
  photobook export -o book.zip --proof proof.pdf --report report.json ./photos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", archive.ArchiveName, "Archive file to write")
	addFormatFlags(exportCmd)
	exportCmd.Flags().Bool("strict", false, "Fail when the number of files does not match the page count")
	exportCmd.Flags().String("report", "", "Also write the JSON export report to this file")
	exportCmd.Flags().String("proof", "", "Also write all PDF pages merged into one proof PDF")
	exportCmd.Flags().BoolP("recursive", "r", false, "Search folders recursively")
}

func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().String("preset", "", "Start from a named format preset (see 'photobook sizes')")
	cmd.Flags().Int("pages", 0, "Page count, a multiple of 4 between 4 and 48")
	cmd.Flags().String("size", "", "Page size: A4, A5, B5, B6, square, postcard")
	cmd.Flags().String("orientation", "", "Page orientation: portrait or landscape")
	cmd.Flags().String("binding", "", "Bound edge: left or right")
	cmd.Flags().String("fit", "", "Image fit: crop (fill the page) or pad (fit inside margins)")
}

// collectInputs expands folders into their supported files, keeping argument
// order and sorting within each folder.
func collectInputs(paths []string, recursive bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		if recursive {
			err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && book.HasAcceptedExtension(d.Name()) {
					found = append(found, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", p, err)
			}
		} else {
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("cannot read folder %s: %w", p, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && book.HasAcceptedExtension(entry.Name()) {
					found = append(found, filepath.Join(p, entry.Name()))
				}
			}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

// resolveSettings starts from the preset (or the defaults) and applies every
// format flag the user set explicitly.
func resolveSettings(cmd *cobra.Command, cfg *config.Config) (book.FormatSettings, error) {
	settings := book.DefaultSettings()
	if name := mustGetString(cmd, "preset"); name != "" {
		preset, err := cfg.Preset(name)
		if err != nil {
			return settings, err
		}
		settings = preset
	}

	var u book.FormatUpdate
	if cmd.Flags().Changed("pages") {
		pages := mustGetInt(cmd, "pages")
		u.Pages = &pages
	}
	for name, field := range map[string]**string{
		"size":        &u.Size,
		"orientation": &u.Orientation,
		"binding":     &u.Binding,
		"fit":         &u.Fit,
	} {
		if cmd.Flags().Changed(name) {
			v := mustGetString(cmd, name)
			*field = &v
		}
	}
	return settings.Apply(u)
}

// loadEntries runs every file through the same intake as uploads. Rejected
// files are reported and skipped.
func loadEntries(intake *book.Intake, files []string) ([]*book.Entry, []book.Rejection) {
	var entries []*book.Entry
	var rejections []book.Rejection
	for _, path := range files {
		entry, rej := func() (*book.Entry, *book.Rejection) {
			name := filepath.Base(path)
			f, err := os.Open(path)
			if err != nil {
				return nil, &book.Rejection{File: name, Code: book.CodeReadFailed, Message: fmt.Sprintf("%q could not be read: %v", name, err)}
			}
			defer f.Close()

			size := int64(-1)
			if info, err := f.Stat(); err == nil {
				size = info.Size()
			}
			return intake.Accept(name, size, f)
		}()
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rejections
}

func newExportBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}

	files, err := collectInputs(args, mustGetBool(cmd, "recursive"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No supported files found.")
		return nil
	}

	entries, rejections := loadEntries(book.NewIntake(cfg.Photobook.MaxUploadBytes()), files)
	for _, r := range rejections {
		fmt.Printf("Skipped: %s\n", r.Message)
	}
	if len(entries) == 0 {
		return errors.New("no usable files")
	}

	if len(entries) != settings.Pages {
		msg := fmt.Sprintf("%d file(s) for a %d-page book", len(entries), settings.Pages)
		if mustGetBool(cmd, "strict") {
			return errors.New(msg)
		}
		fmt.Printf("Warning: %s\n", msg)
	}

	w, h := settings.PageDimensions()
	fmt.Printf("Exporting %d page(s), %s %s (%.0fx%.0fmm), %s binding, %s fit\n\n",
		len(entries), settings.Size, settings.Orientation, w, h, settings.Binding, settings.Fit)

	output := mustGetString(cmd, "output")
	var buf bytes.Buffer
	bar := newExportBar(len(entries))
	report, err := archive.NewPipeline(cfg).Assemble(&buf, entries, settings, func(done, total int) {
		_ = bar.Set(done)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	report.Archive = filepath.Base(output)

	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	for _, p := range report.Pages {
		for _, warning := range p.Warnings {
			fmt.Printf("Warning: %s: %s\n", p.Name, warning)
		}
		if p.Fallback {
			fmt.Printf("Fallback: %s replaced %s (%s)\n", p.Name, p.Source, p.FallbackReason)
		}
	}

	if path := mustGetString(cmd, "report"); path != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	if path := mustGetString(cmd, "proof"); path != "" {
		if err := writeProof(path, report); err != nil {
			fmt.Printf("Warning: proof not written: %v\n", err)
		}
	}

	fmt.Printf("\nDone! Wrote %d page(s) to %s (%.1fMB, %d fallback(s))\n",
		len(report.Pages), output, float64(report.ArchiveBytes)/1024/1024, report.Fallbacks)
	return nil
}

func writeProof(path string, report *archive.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := archive.MergeProof(f, report.PDFs()); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

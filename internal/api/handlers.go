package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	imagepkg "github.com/youruser/imgcomp/internal/image"
)

const (
	sampleText = "imgcomp preview"
	sampleSize = 512
)

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sample returns a QR code PNG for the "text" query param
func sampleHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = sampleText
	}
	size := sampleSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= imagepkg.MaxOutputSize {
		size = v
	}
	b, err := imagepkg.SamplePNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// composite: multipart "image", optional "background"/"backgroundUrl", "settings" JSON
func compositeHandler(c *gin.Context, config *Config) {
	style, err := readSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, name, err := readImage(c, "image", config.MaxUploadSize)
	if err != nil {
		respondError(c, err)
		return
	}
	style = loadBackground(c, style, config.MaxUploadSize)

	out, err := imagepkg.Composite(src, style, imagepkg.WithDeviceScale(config.DeviceScale))
	if err != nil {
		respondError(c, err)
		return
	}
	writeImage(c, out, style, name)
}

// watermark only: stamps the uploaded image at its own size
func watermarkHandler(c *gin.Context, config *Config) {
	style, err := readSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, name, err := readImage(c, "image", config.MaxUploadSize)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := imagepkg.WatermarkImage(src, style)
	if err != nil {
		respondError(c, err)
		return
	}
	b := src.Bounds()
	style.OutputWidth, style.OutputHeight = b.Dx(), b.Dy()
	writeImage(c, out, style, name)
}

// preview renders a square PNG; without an upload it previews the QR sample
func previewHandler(c *gin.Context, config *Config) {
	style, err := readSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	style = imagepkg.PreviewConfig(style)

	var src image.Image
	name := "preview"
	if _, ferr := c.FormFile("image"); ferr == nil {
		src, name, err = readImage(c, "image", config.MaxUploadSize)
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		src, err = imagepkg.SampleSource(sampleText, sampleSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	style = loadBackground(c, style, config.MaxUploadSize)

	out, err := imagepkg.Composite(src, style, imagepkg.WithDeviceScale(config.DeviceScale))
	if err != nil {
		respondError(c, err)
		return
	}
	writeImage(c, out, style, name)
}

// batch: repeated "images" files, responds with a zip of the results
func batchHandler(c *gin.Context, config *Config) {
	style, err := readSettings(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No images uploaded"})
		return
	}
	var jobs []imagepkg.BatchJob
	for _, fh := range form.File["images"] {
		data, err := readFileHeader(fh, config.MaxUploadSize)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		jobs = append(jobs, imagepkg.BatchJob{Name: fh.Filename, Data: data})
	}
	// Decoded once, shared read-only by every job.
	style = loadBackground(c, style, config.MaxUploadSize)

	results := imagepkg.ProcessBatch(c.Request.Context(), jobs, style,
		imagepkg.WithWorkers(config.BatchWorkers),
		imagepkg.WithRenderOptions(imagepkg.WithDeviceScale(config.DeviceScale)))

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	var failures []string
	for _, r := range results {
		if r.Err != nil {
			log.Printf("batch: %s: %v", r.Name, r.Err)
			failures = append(failures, fmt.Sprintf("%s: %v", r.Name, r.Err))
			continue
		}
		w, err := zw.Create(r.Filename)
		if err == nil {
			_, err = w.Write(r.Data)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if len(failures) > 0 {
		w, err := zw.Create("errors.txt")
		if err == nil {
			_, err = io.WriteString(w, strings.Join(failures, "\n")+"\n")
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if err := zw.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="images.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// readSettings merges the optional "settings" JSON over the defaults and clamps it.
func readSettings(c *gin.Context) (imagepkg.StyleConfig, error) {
	style := imagepkg.DefaultStyleConfig()
	if raw := c.PostForm("settings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &style); err != nil {
			return style, fmt.Errorf("invalid settings: %w", err)
		}
	}
	return style.Clamp(), nil
}

func readImage(c *gin.Context, field string, maxSize int64) (image.Image, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", uploadError{fmt.Errorf("no %q file uploaded", field)}
	}
	data, err := readFileHeader(fh, maxSize)
	if err != nil {
		return nil, "", err
	}
	img, err := imagepkg.Decode(data)
	if err != nil {
		return nil, "", err
	}
	return img, fh.Filename, nil
}

func readFileHeader(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if maxSize > 0 && fh.Size > maxSize {
		return nil, uploadError{fmt.Errorf("%s exceeds %d bytes", fh.Filename, maxSize)}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// loadBackground resolves the background image for "image" mode. A missing
// or undecodable background leaves the canvas transparent.
func loadBackground(c *gin.Context, style imagepkg.StyleConfig, maxSize int64) imagepkg.StyleConfig {
	if style.BackgroundMode != imagepkg.BackgroundImage {
		return style
	}
	var (
		bg  image.Image
		err error
	)
	if _, ferr := c.FormFile("background"); ferr == nil {
		bg, _, err = readImage(c, "background", maxSize)
	} else if url := c.PostForm("backgroundUrl"); url != "" {
		bg, err = imagepkg.DownloadImage(url)
	}
	if err != nil {
		log.Println("background ignored:", err)
	}
	style.BackgroundImage = bg
	return style
}

func writeImage(c *gin.Context, img image.Image, style imagepkg.StyleConfig, name string) {
	b, err := imagepkg.EncodeBytes(img, style.OutputFormat, style.Quality)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := imagepkg.OutputFilename(name, style)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, imagepkg.ContentType(style.OutputFormat), b)
}

// uploadError marks a problem with the request itself.
type uploadError struct{ error }

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var ue uploadError
	switch {
	case errors.As(err, &ue):
		status = http.StatusBadRequest
	case imagepkg.KindOf(err) == imagepkg.InvalidDimensions, imagepkg.KindOf(err) == imagepkg.DecodeFailure:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

package http

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kshitijlau/AIPM/internal/config"
	"github.com/kshitijlau/AIPM/internal/domain"
	"github.com/kshitijlau/AIPM/internal/logger"
	"github.com/kshitijlau/AIPM/internal/services"
	"github.com/kshitijlau/AIPM/internal/storage"
)

const (
	pageTitle       = "Lighthouse: AI Product Requirements Assistant"
	transcriptTypes = ".txt"
	audioTypes      = ".txt,.mp3,.wav,.m4a"
)

var downloadFormats = []string{
	string(services.FormatText),
	string(services.FormatPDF),
	string(services.FormatDOCX),
}

type API struct {
	cfg      config.Config
	analysis *services.AnalysisService
	exporter *services.Exporter
	log      logger.Logger
}

func NewAPI(cfg config.Config, analysis *services.AnalysisService, exporter *services.Exporter, log logger.Logger) *API {
	return &API{cfg: cfg, analysis: analysis, exporter: exporter, log: log}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/", api.handleIndex)
	r.POST("/analyze", api.handleAnalyzePage)
	r.POST("/download", api.handleDownloadForm)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.handleHealth)
		apiGroup.POST("/analyze", api.handleAnalyze)
		apiGroup.POST("/download", api.handleDownload)
	}
}

// registerHaltedRoutes serves only the configuration error.
func registerHaltedRoutes(r *gin.Engine, cfgErr *domain.ConfigurationError) {
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusServiceUnavailable, "index.html", pageData{
			Title:  pageTitle,
			Error:  cfgErr.Error(),
			Halted: true,
		})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": cfgErr.Error()})
	})
}

func (a *API) limits() storage.Limits {
	return storage.Limits{Transcript: a.cfg.MaxUploadBytes, Audio: a.cfg.MaxAudioBytes}
}

func (a *API) basePage() pageData {
	accept := transcriptTypes
	if a.analysis.AudioEnabled() {
		accept = audioTypes
	}
	return pageData{
		Title:        pageTitle,
		Provider:     string(a.analysis.Provider()),
		Model:        a.analysis.ChatModel(),
		AudioEnabled: a.analysis.AudioEnabled(),
		Accept:       accept,
		Formats:      downloadFormats,
	}
}

func (a *API) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", a.basePage())
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"provider":      a.analysis.Provider(),
		"model":         a.analysis.ChatModel(),
		"audio":         a.analysis.AudioEnabled(),
		"promptVersion": a.analysis.PromptVersion(),
	})
}

func (a *API) handleAnalyzePage(c *gin.Context) {
	page := a.basePage()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		page.Error = "Please upload a transcript file."
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	analysis, err := a.processFile(c, fileHeader)
	if err != nil {
		page.Error = err.Error()
		c.HTML(statusFor(err), "index.html", page)
		return
	}

	html, err := renderMarkdown(analysis.Result)
	if err != nil {
		a.log.Error(c.Request.Context(), "render markdown: %v", err)
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	page.SourceName = analysis.SourceName
	page.Transcript = analysis.Transcript
	page.ResultHTML = html
	page.ResultB64 = encodeResult(analysis.Result)
	page.Timestamp = analysis.GeneratedAt.Format(services.TimestampLayout)
	page.GeneratedAt = analysis.GeneratedAt.Format("2006-01-02 15:04:05")
	c.HTML(http.StatusOK, "index.html", page)
}

func (a *API) handleDownloadForm(c *gin.Context) {
	result, err := decodeResult(c.PostForm("result_b64"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid result payload")
		return
	}
	a.writeDownload(c, result, c.PostForm("timestamp"), c.PostForm("format"))
}

func (a *API) handleAnalyze(c *gin.Context) {
	var (
		analysis domain.Analysis
		err      error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, ferr := c.FormFile("file")
		if ferr != nil {
			respondMessage(c, http.StatusBadRequest, "missing transcript file")
			return
		}
		analysis, err = a.processFile(c, fileHeader)
	} else {
		var payload struct {
			Name       string `json:"name"`
			Transcript string `json:"transcript" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		if payload.Name == "" {
			payload.Name = "transcript.txt"
		}
		upload := domain.Upload{
			Name:        payload.Name,
			Kind:        domain.UploadTranscript,
			ContentType: "text/plain",
			Data:        []byte(payload.Transcript),
		}
		analysis, err = a.process(c, upload)
	}

	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": analysis,
		"filename": services.DownloadName(analysis.GeneratedAt, services.FormatText),
	})
}

func (a *API) handleDownload(c *gin.Context) {
	var payload struct {
		Result    string `json:"result" binding:"required"`
		Timestamp string `json:"timestamp"`
		Format    string `json:"format"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	a.writeDownload(c, payload.Result, payload.Timestamp, payload.Format)
}

func (a *API) writeDownload(c *gin.Context, result, timestamp, format string) {
	if result == "" {
		respondMessage(c, http.StatusBadRequest, "nothing to download")
		return
	}

	exportFormat, err := services.ParseFormat(format)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	generatedAt := time.Now()
	if timestamp != "" {
		generatedAt, err = services.ParseTimestamp(timestamp)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}

	dl, err := a.exporter.Export(result, generatedAt, exportFormat)
	if err != nil {
		a.log.Error(c.Request.Context(), "export %s: %v", exportFormat, err)
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}

func (a *API) processFile(c *gin.Context, fileHeader *multipart.FileHeader) (domain.Analysis, error) {
	a.log.Info(c.Request.Context(), "received upload: filename=%s size=%d", fileHeader.Filename, fileHeader.Size)

	f, err := fileHeader.Open()
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	upload, err := storage.ReadUpload(f, fileHeader.Filename, a.limits())
	if err != nil {
		return domain.Analysis{}, err
	}
	return a.process(c, upload)
}

// process runs the provider calls detached from the client connection; the
// service timeout bounds them.
func (a *API) process(c *gin.Context, upload domain.Upload) (domain.Analysis, error) {
	ctx := context.WithoutCancel(c.Request.Context())

	analysis, err := a.analysis.Process(ctx, upload)
	if err != nil {
		a.log.Warn(ctx, "analysis of %s failed: %v", upload.Name, err)
		return domain.Analysis{}, err
	}
	a.log.Info(ctx, "analysis %s ready for %s", analysis.ID, upload.Name)
	return analysis, nil
}

func statusFor(err error) int {
	var (
		decodeErr   *domain.InputDecodeError
		providerErr *domain.ProviderCallError
		cfgErr      *domain.ConfigurationError
	)
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.As(err, &providerErr):
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

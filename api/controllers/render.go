package controllers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"isMP4":      isMP4,
	"iconForExt": iconForExt,
	"urlencode":  urlencodePath,
}).ParseFS(templateFS, "templates/*.html"))

// renderPage executes a page template. A render failure degrades to the raw
// error text as the page body instead of failing the request.
func renderPage(c *gin.Context, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(err.Error()))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func isMP4(name string) bool {
	return strings.EqualFold(path.Ext(strings.TrimSuffix(name, "/")), ".mp4")
}

func iconForExt(name string) string {
	if strings.HasSuffix(name, "/") {
		return "folder"
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".mp4", ".mkv", ".avi", ".webm", ".mov":
		return "film"
	case ".mp3", ".flac", ".ogg", ".wav":
		return "music"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".zip", ".tar", ".gz", ".rar", ".7z":
		return "archive"
	case ".txt", ".md", ".pdf":
		return "document"
	default:
		return "file"
	}
}

// urlencodePath escapes each path segment while keeping the separators.
func urlencodePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

package ui

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"borelog/internal/session"

	"github.com/gin-gonic/gin"
)

// redirectBack returns to the tab the command was issued from.
func redirectBack(c *gin.Context) {
	target := "/tabs/raw"
	if t, ok := findTab(c.PostForm("tab")); ok {
		target = "/tabs/" + t.Key
		if q := c.PostForm("query"); q != "" {
			if _, err := url.ParseQuery(q); err == nil {
				target += "?" + q
			}
		}
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.controller.Notify(session.LevelError, "Choose a CSV file to upload.")
		redirectBack(c)
		return
	}
	if header.Size > s.opts.MaxUploadBytes {
		s.controller.Notify(session.LevelError,
			fmt.Sprintf("%s exceeds the %d MB upload limit.", header.Filename, s.opts.MaxUploadBytes>>20))
		redirectBack(c)
		return
	}

	f, err := header.Open()
	if err != nil {
		log.Printf("[Upload] Failed to open %s: %v", header.Filename, err)
		s.controller.Notify(session.LevelError, fmt.Sprintf("Error reading file: %v", err))
		redirectBack(c)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes))
	if err != nil {
		log.Printf("[Upload] Failed to read %s: %v", header.Filename, err)
		s.controller.Notify(session.LevelError, fmt.Sprintf("Error reading file: %v", err))
		redirectBack(c)
		return
	}

	// The outcome is reported through the session message.
	_, _ = s.controller.Apply(c.Request.Context(), session.Upload{Filename: header.Filename, Data: data})
	redirectBack(c)
}

func (s *Server) handleSelect(c *gin.Context) {
	_, _ = s.controller.Apply(c.Request.Context(), session.SelectBorehole{ID: c.PostForm("borehole")})
	redirectBack(c)
}

func (s *Server) handleReset(c *gin.Context) {
	_, _ = s.controller.Apply(c.Request.Context(), session.Reset{})
	redirectBack(c)
}

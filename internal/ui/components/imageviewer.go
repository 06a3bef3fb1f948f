// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/scribe-tui/internal/backend"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// =============================================================================
// IMAGE VIEWER COMPONENT - Diagram modal with download strategies
// =============================================================================

// downloadTimeout bounds a single download attempt.
const downloadTimeout = 60 * time.Second

// maxDownloadSize caps a downloaded diagram.
const maxDownloadSize = 25 * 1024 * 1024

// DownloadMethod names the strategy that produced a download result.
type DownloadMethod string

const (
	// DownloadViaProxy fetched through the local relay server.
	DownloadViaProxy DownloadMethod = "proxy"
	// DownloadDirect fetched straight from the backend.
	DownloadDirect DownloadMethod = "direct"
	// DownloadViaBrowser handed the URL to the system browser.
	DownloadViaBrowser DownloadMethod = "browser"
)

// DownloadResultMsg reports the outcome of a download attempt.
type DownloadResultMsg struct {
	Path   string
	Method DownloadMethod
	Err    error
}

// BrowserOpenedMsg reports the outcome of handing a URL to the browser.
type BrowserOpenedMsg struct {
	URL string
	Err error
}

// ImageViewer is the modal overlay shown when the user opens a diagram.
// It shows the diagram's title and URL and offers download, open in
// browser, and close actions. Downloads try the local relay first, then a
// direct backend fetch, then fall back to the browser.
type ImageViewer struct {
	theme *styles.Theme

	open   bool
	title  string
	url    string // host-qualified
	width  int
	height int

	// Latest download status line, cleared on open
	status  string
	isError bool

	client      *backend.Client
	proxyURL    string // e.g. http://127.0.0.1:3000; empty disables the relay strategy
	downloadDir string
}

// NewImageViewer creates a new ImageViewer.
func NewImageViewer(theme *styles.Theme, client *backend.Client) *ImageViewer {
	return &ImageViewer{
		theme:  theme,
		client: client,
		width:  80,
		height: 24,
	}
}

// SetSize updates the modal's available screen area.
func (iv *ImageViewer) SetSize(width, height int) {
	iv.width = width
	iv.height = height
}

// SetProxyURL enables the relay download strategy.
func (iv *ImageViewer) SetProxyURL(proxyURL string) {
	iv.proxyURL = proxyURL
}

// SetDownloadDir sets where downloaded diagrams are written.
func (iv *ImageViewer) SetDownloadDir(dir string) {
	iv.downloadDir = dir
}

// Open shows the modal for a diagram.
func (iv *ImageViewer) Open(title, url string) {
	iv.open = true
	iv.title = title
	iv.url = url
	iv.status = ""
	iv.isError = false
}

// Close hides the modal.
func (iv *ImageViewer) Close() {
	iv.open = false
}

// IsOpen reports whether the modal is visible.
func (iv *ImageViewer) IsOpen() bool {
	return iv.open
}

// Title returns the open diagram's title.
func (iv *ImageViewer) Title() string {
	return iv.title
}

// SetStatus records the latest download outcome for display.
func (iv *ImageViewer) SetStatus(status string, isError bool) {
	iv.status = status
	iv.isError = isError
}

// ==========================================================================
// DOWNLOAD STRATEGIES
// ==========================================================================

// Download returns a command that tries each download strategy in order
// and reports the first success. The relay and direct strategies save to
// the download directory; the browser fallback just opens the URL.
func (iv *ImageViewer) Download() tea.Cmd {
	title := iv.title
	imageURL := iv.url
	proxyURL := iv.proxyURL
	dir := iv.downloadDir
	client := iv.client

	return func() tea.Msg {
		filename := util.SanitizeFilename(title)
		dest := filepath.Join(dir, filename)

		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()

		if proxyURL != "" {
			err := downloadViaProxy(ctx, proxyURL, imageURL, filename, dest)
			if err == nil {
				return DownloadResultMsg{Path: dest, Method: DownloadViaProxy}
			}
			log.Printf("DOWNLOAD_PROXY_FAILED | url=%s err=%v", imageURL, err)
		}

		if client != nil {
			data, err := client.FetchImage(ctx, imageURL)
			if err == nil {
				err = util.AtomicWriteFile(dest, data, 0o644)
				if err == nil {
					return DownloadResultMsg{Path: dest, Method: DownloadDirect}
				}
			}
			log.Printf("DOWNLOAD_DIRECT_FAILED | url=%s err=%v", imageURL, err)
		}

		if err := openBrowser(imageURL); err != nil {
			return DownloadResultMsg{Method: DownloadViaBrowser, Err: fmt.Errorf("all download strategies failed: %w", err)}
		}
		return DownloadResultMsg{Method: DownloadViaBrowser}
	}
}

// OpenInBrowser returns a command that opens the diagram URL in the
// system browser.
func (iv *ImageViewer) OpenInBrowser() tea.Cmd {
	target := iv.url
	return func() tea.Msg {
		return BrowserOpenedMsg{URL: target, Err: openBrowser(target)}
	}
}

// downloadViaProxy fetches the image through the local relay's download
// endpoint and writes it to dest.
func downloadViaProxy(ctx context.Context, proxyURL, imageURL, filename, dest string) error {
	endpoint := fmt.Sprintf("%s/api/chat?url=%s&filename=%s",
		proxyURL, url.QueryEscape(imageURL), url.QueryEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("relay returned empty body")
	}

	return util.AtomicWriteFile(dest, data, 0o644)
}

// openBrowser opens a URL with the platform's default opener.
func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// ==========================================================================
// RENDERING
// ==========================================================================

// View renders the modal centered in the available area.
func (iv *ImageViewer) View() string {
	if !iv.open {
		return ""
	}

	boxWidth := minInt(iv.width-8, 70)
	if boxWidth < 40 {
		boxWidth = minInt(40, iv.width-2)
	}

	title := iv.theme.ModalTitle.Render(iv.title)
	urlLine := iv.theme.ModalURL.Render(util.TruncateWidth(iv.url, boxWidth-6))

	actions := lipgloss.JoinHorizontal(lipgloss.Top,
		iv.theme.ModalActionKey.Render("d"),
		iv.theme.ModalAction.Render(" download  "),
		iv.theme.ModalActionKey.Render("o"),
		iv.theme.ModalAction.Render(" open in browser  "),
		iv.theme.ModalActionKey.Render("esc"),
		iv.theme.ModalAction.Render(" close"),
	)

	parts := []string{title, "", urlLine, "", actions}

	if iv.status != "" {
		statusLine := styles.RenderSuccess(iv.status)
		if iv.isError {
			statusLine = styles.RenderError(iv.status)
		}
		parts = append(parts, "", statusLine)
	}

	box := iv.theme.ModalBox.
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	return lipgloss.Place(iv.width, iv.height, lipgloss.Center, lipgloss.Center, box)
}

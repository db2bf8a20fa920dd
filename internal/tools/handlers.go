package tools

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aidanlsb/rook/internal/markdown"
	"github.com/aidanlsb/rook/internal/roam"
)

// now is swapped in tests that pin the daily-note date.
var now = time.Now

func init() {
	for name, def := range Registry {
		switch name {
		case "daily":
			RegisterHandler(name, dailyHandler(def))
		case "open":
			RegisterHandler(name, openHandler)
		case "upload":
			RegisterHandler(name, uploadHandler)
		case "download":
			RegisterHandler(name, downloadHandler)
		case "import":
			RegisterHandler(name, importHandler)
		case "block_add":
			RegisterHandler(name, blockAddHandler(def))
		default:
			RegisterHandler(name, passthrough(def))
		}
	}
}

// passthrough forwards validated args to the definition's action verbatim.
// Most tools are thin translations; anything richer gets its own handler.
func passthrough(def Definition) Handler {
	return func(client *roam.Client, args map[string]any) (*Result, error) {
		raw, err := client.Call(def.Action, args)
		if err != nil {
			return nil, err
		}
		return JSONResult(raw), nil
	}
}

// blockAddHandler treats a negative order as "append after the existing
// children" and leaves placement to the app by omitting the field.
func blockAddHandler(def Definition) Handler {
	return func(client *roam.Client, args map[string]any) (*Result, error) {
		if order, ok := args["order"].(int); ok && order < 0 {
			delete(args, "order")
		}
		raw, err := client.Call(def.Action, args)
		if err != nil {
			return nil, err
		}
		return JSONResult(raw), nil
	}
}

func dailyHandler(def Definition) Handler {
	return func(client *roam.Client, args map[string]any) (*Result, error) {
		date, _ := args["date"].(string)
		if date == "" {
			date = now().Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, roam.Errorf(roam.ErrCodeValidation, `"date" must be YYYY-MM-DD, got %q`, date).
				WithContext("field", "date")
		}
		raw, err := client.Call(def.Action, map[string]any{"date": date})
		if err != nil {
			return nil, err
		}
		return JSONResult(raw), nil
	}
}

func openHandler(client *roam.Client, args map[string]any) (*Result, error) {
	raw, err := client.Call("page.get", map[string]any{"ref": args["ref"]})
	if err != nil {
		return nil, err
	}
	var page struct {
		UID   string `json:"uid"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &page); err != nil || page.UID == "" {
		return nil, roam.NewError(roam.ErrCodeInternal, "page lookup returned no uid")
	}
	if err := client.OpenPage(page.UID); err != nil {
		return nil, roam.Errorf(roam.ErrCodeInternal, "could not hand the page to Roam: %v", err).
			WithSuggestion("Open the Roam desktop app manually and retry.")
	}
	title := page.Title
	if title == "" {
		title = page.UID
	}
	return TextResultf("Opened %q in Roam.", title), nil
}

func uploadHandler(client *roam.Client, args map[string]any) (*Result, error) {
	path, _ := args["file"].(string)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, roam.Errorf(roam.ErrCodeValidation, "cannot read %q: %v", path, err).
			WithContext("field", "file")
	}
	raw, err := client.Call("file.upload", map[string]any{
		"filename":  filepath.Base(path),
		"data":      base64.StdEncoding.EncodeToString(data),
		"mediaType": mediaTypeFor(path),
	})
	if err != nil {
		return nil, err
	}
	return JSONResult(raw), nil
}

func downloadHandler(client *roam.Client, args map[string]any) (*Result, error) {
	raw, err := client.Call("file.download", map[string]any{"url": args["url"]})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data      string `json:"data"`
		MediaType string `json:"mediaType"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, roam.Errorf(roam.ErrCodeInternal, "malformed download payload: %v", err)
	}
	blob, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, roam.Errorf(roam.ErrCodeInternal, "malformed download payload: %v", err)
	}
	if payload.MediaType == "" {
		payload.MediaType = "application/octet-stream"
	}
	if out, _ := args["out"].(string); out != "" {
		if err := os.WriteFile(out, blob, 0o644); err != nil {
			return nil, roam.Errorf(roam.ErrCodeValidation, "cannot write %q: %v", out, err).
				WithContext("field", "out")
		}
		return &Result{
			Content: []Content{{Type: ContentText, Text: fmt.Sprintf("Saved %d bytes to %s.", len(blob), out)}},
			Data:    map[string]any{"path": out, "bytes": len(blob), "mediaType": payload.MediaType},
		}, nil
	}
	return BlobResult(blob, payload.MediaType), nil
}

func importHandler(client *roam.Client, args map[string]any) (*Result, error) {
	path, _ := args["file"].(string)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, roam.Errorf(roam.ErrCodeValidation, "cannot read %q: %v", path, err).
			WithContext("field", "file")
	}
	blocks := markdown.ParseOutline(src)
	if len(blocks) == 0 {
		return nil, roam.Errorf(roam.ErrCodeValidation, "%q has no content to import", path).
			WithContext("field", "file")
	}
	page, _ := args["page"].(string)
	if page == "" {
		page = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	raw, err := client.Call("batch", roam.BatchArgs(page, blocks))
	if err != nil {
		return nil, err
	}
	return JSONResult(raw), nil
}

// mediaTypeFor guesses from the extension; unknown extensions upload as
// opaque bytes.
func mediaTypeFor(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

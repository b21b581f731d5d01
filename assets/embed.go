// Package assets embeds the page template and the audio cues.
package assets

import (
	"embed"
	"encoding/base64"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html audio/*.wav
var FS embed.FS

// Templates parses every embedded page template with funcs installed.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(FS, "templates/*.html")
}

// AudioDataURI returns the named cue ("success" or "failure") as a
// data:audio/wav URI ready for an <audio> source.
func AudioDataURI(name string) (template.URL, error) {
	b, err := fs.ReadFile(FS, "audio/"+name+".wav")
	if err != nil {
		return "", err
	}
	return template.URL("data:audio/wav;base64," + base64.StdEncoding.EncodeToString(b)), nil
}

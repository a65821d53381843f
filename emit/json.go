package emit

import (
	"encoding/json"
	"io"

	"github.com/hokaccha/go-prettyjson"
)

// WriteJSON writes the documents as an indented JSON array. With color set,
// keys and values are highlighted for a terminal.
func WriteJSON(w io.Writer, docs []GraphDocument, color bool) error {
	if docs == nil {
		docs = []GraphDocument{}
	}
	var (
		data []byte
		err  error
	)
	if color {
		data, err = prettyjson.Marshal(docs)
	} else {
		data, err = json.MarshalIndent(docs, "", "  ")
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from creating its config directory under $HOME
	api.DisableConfigDir()
}

// Inspector reads document structure with pdfcpu. It is only used for
// diagnostics and never gates a request.
type Inspector struct {
	conf *model.Configuration
}

// NewInspector returns an Inspector using relaxed validation.
func NewInspector() *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// PageCount returns the number of pages in content.
func (i *Inspector) PageCount(content []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	n, err = api.PageCount(bytes.NewReader(content), i.conf)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

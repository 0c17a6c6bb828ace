package wcs

import (
	"bytes"
	"io"
	"net/http"

	"github.com/mohammed-shakir/wcs-describe/internal/xmlstream"
)

// WriteExceptionReport renders err as an OWS 2.0 ExceptionReport.
func WriteExceptionReport(out io.Writer, err *ServiceError) error {
	w := xmlstream.NewWriter(out)
	w.Header()
	attrs := []xmlstream.Attr{
		xmlstream.A("xmlns:ows", NSOWS),
		xmlstream.A("xmlns:xsi", NSXSI),
		xmlstream.A("version", "2.0.0"),
		xmlstream.A("xsi:schemaLocation", NSOWS+" "+DefaultSchemaBaseURL+"/ows/2.0/owsExceptionReport.xsd"),
	}
	_ = w.Within("ows:ExceptionReport", attrs, func() error {
		exAttrs := []xmlstream.Attr{xmlstream.A("exceptionCode", string(err.Code))}
		if err.Locator != "" {
			exAttrs = append(exAttrs, xmlstream.A("locator", err.Locator))
		}
		return w.Within("ows:Exception", exAttrs, func() error {
			if err.Err != nil {
				w.Element("ows:ExceptionText", err.Err.Error())
			}
			return w.Err()
		})
	})
	return w.Close()
}

// ServeException writes err as an ExceptionReport with the status its code
// maps to.
func ServeException(w http.ResponseWriter, err error) {
	se := AsServiceError(err)
	var buf bytes.Buffer
	if werr := WriteExceptionReport(&buf, se); werr != nil {
		http.Error(w, se.Error(), se.HTTPStatus())
		return
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(se.HTTPStatus())
	_, _ = w.Write(buf.Bytes())
}

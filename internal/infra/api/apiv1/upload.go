package apiv1

import (
	"errors"
	"net/http"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/usecase"
)

// parseMultipart bounds the body to the upload limit plus form overhead.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.d.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.ErrInvalidArgument
		}
		return errBadRequest
	}
	return nil
}

// formFile opens the named part. The caller closes it with the returned func.
func formFile(r *http.Request, field string) (usecase.FileUpload, func(), error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return usecase.FileUpload{}, func() {}, domain.ErrInvalidArgument
		}
		return usecase.FileUpload{}, func() {}, errBadRequest
	}
	return usecase.FileUpload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

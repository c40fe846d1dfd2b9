package models

// Fail is an expected pipeline step that could not complete. The driver
// logs Message, sets the overall commit status to failure with the
// description "Complete, with errors" and aborts the remaining steps of
// that job (§7 error taxonomy). A hook that wants Message itself shown on
// a status publishes that status before returning.
type Fail struct {
	Message string
}

func (e *Fail) Error() string { return e.Message }

// FailWithGist is like Fail, but also carries a gist that the driver
// creates and attaches by URL to the overall failure status (§7).
type FailWithGist struct {
	Message     string
	GistTitle   string
	GistContent string
}

func (e *FailWithGist) Error() string { return e.Message }

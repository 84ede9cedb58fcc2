package dto

// File is the subset of the Drive v3 files resource the sync needs.
// Size comes back as a decimal string.
type File struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     string `json:"size,omitempty"`
	Trashed  bool   `json:"trashed,omitempty"`
}

type FileList struct {
	Files         []File `json:"files,omitempty"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
}

type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Errors  []struct {
			Reason string `json:"reason,omitempty"`
		} `json:"errors,omitempty"`
	} `json:"error,omitempty"`
}

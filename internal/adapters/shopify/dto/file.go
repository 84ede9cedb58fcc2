package dto

type StagedUploadParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type StagedTarget struct {
	URL         string                  `json:"url,omitempty"`
	ResourceURL string                  `json:"resourceUrl,omitempty"`
	Parameters  []StagedUploadParameter `json:"parameters,omitempty"`
}

type ShopifyFile struct {
	ID         string `json:"id,omitempty"`
	FileStatus string `json:"fileStatus,omitempty"`
	Alt        string `json:"alt,omitempty"`
	Image      *struct {
		URL string `json:"url,omitempty"`
	} `json:"image,omitempty"`
	URL string `json:"url,omitempty"`
}

type MetafieldsSetData struct {
	MetafieldsSet struct {
		Metafields []struct {
			ID        string `json:"id,omitempty"`
			Namespace string `json:"namespace,omitempty"`
			Key       string `json:"key,omitempty"`
			Value     string `json:"value,omitempty"`
		} `json:"metafields,omitempty"`
		UserErrors []ShopifyUserError `json:"userErrors,omitempty"`
	} `json:"metafieldsSet"`
}

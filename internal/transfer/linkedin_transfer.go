package transfer

type LinkedinRegisterUploadRequest struct {
	RegisterUploadRequest struct {
		Recipes              []string                      `json:"recipes"`
		Owner                string                        `json:"owner"`
		ServiceRelationships []LinkedinServiceRelationship `json:"serviceRelationships"`
	} `json:"registerUploadRequest"`
}

type LinkedinServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type LinkedinRegisterUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism struct {
			MediaUploadHTTPRequest struct {
				UploadURL string            `json:"uploadUrl"`
				Headers   map[string]string `json:"headers"`
			} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

type LinkedinUGCPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent LinkedinSpecificContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type LinkedinSpecificContent struct {
	ShareContent LinkedinShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type LinkedinShareContent struct {
	ShareCommentary    LinkedinText    `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
	Media              []LinkedinMedia `json:"media,omitempty"`
}

type LinkedinText struct {
	Text string `json:"text"`
}

type LinkedinMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"`
}

package transfer

type FacebookPostResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

type FacebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type FacebookAttachedMedia struct {
	MediaFbid string `json:"media_fbid"`
}

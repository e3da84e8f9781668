package client

func (c *Client) SetHTTPClient(httpClient HTTPClient) {
	c.httpClient = httpClient
}

func (c *Client) SetUsername(username string) {
	c.username = username
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

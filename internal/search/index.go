package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/viewtube/accounts/internal/models"
)

const channelIndex = "channels"

type Config struct {
	URL      string
	User     string
	Password string
}

// Index keeps a searchable projection of channel profiles. All writes are
// best-effort; the account flows never fail on index errors.
type Index struct {
	client *elasticsearch.Client
}

func NewIndex(cfg Config) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return &Index{client: client}, nil
}

func (i *Index) IndexChannel(ctx context.Context, u *models.User) error {
	doc := map[string]string{
		"username":  u.Username,
		"fullName":  u.FullName,
		"avatarUrl": u.AvatarURL,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := i.client.Index(
		channelIndex,
		bytes.NewReader(data),
		i.client.Index.WithDocumentID(u.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index channel %s: %w", u.Username, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index channel %s: %s: %s", u.Username, res.Status(), body)
	}
	return nil
}

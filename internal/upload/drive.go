package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveFiles is a Files implementation backed by the Drive v3 API.
type DriveFiles struct {
	srv *drive.Service
}

// NewDriveFiles builds a Drive client from an OAuth client secret file and a
// previously saved token file.
func NewDriveFiles(ctx context.Context, credentialsFile, tokenFile string) (*DriveFiles, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}
	config, err := google.ConfigFromJSON(secret, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}
	tok, err := TokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("loading token %s: %w", tokenFile, err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &DriveFiles{srv: srv}, nil
}

// TokenFromFile retrieves a token from a local file.
func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Find returns the id of a non-trashed file with the given name in the folder.
func (d *DriveFiles) Find(ctx context.Context, name, folderID string) (string, bool, error) {
	list, err := d.srv.Files.List().
		Q(searchQuery(name, folderID)).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", false, err
	}
	if len(list.Files) == 0 {
		return "", false, nil
	}
	return list.Files[0].Id, true, nil
}

// Create uploads a new file into the folder.
func (d *DriveFiles) Create(ctx context.Context, name, folderID, mimeType string, content io.Reader) (string, error) {
	meta := &drive.File{Name: name, Parents: []string{folderID}}
	f, err := d.srv.Files.Create(meta).
		Media(content, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

// Update replaces the content of an existing file.
func (d *DriveFiles) Update(ctx context.Context, id, mimeType string, content io.Reader) (string, error) {
	f, err := d.srv.Files.Update(id, &drive.File{}).
		Media(content, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func searchQuery(name, folderID string) string {
	escape := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escape.Replace(name), escape.Replace(folderID))
}

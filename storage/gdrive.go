package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMime = "application/vnd.google-apps.folder"

// GoogleDriveProvider implements Provider for Google Drive
type GoogleDriveProvider struct {
	service   *drive.Service
	tokenFile string
}

// NewGoogleDriveProvider authenticates with the OAuth client in
// credentialsFile, caching the token in tokenFile
func NewGoogleDriveProvider(ctx context.Context, credentialsFile, tokenFile string) (*GoogleDriveProvider, error) {
	tokenFile = expandHome(tokenFile)
	credentialsFile = expandHome(credentialsFile)

	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read credentials file")
	}

	config, err := google.ConfigFromJSON(credBytes, drive.DriveScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse credentials")
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		token, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get token")
		}
		if err := saveToken(tokenFile, token); err != nil {
			return nil, errors.Wrap(err, "failed to save token")
		}
	}

	service, err := drive.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Drive service")
	}

	return &GoogleDriveProvider{service: service, tokenFile: tokenFile}, nil
}

// ListFiles lists the files of a folder path such as "photos/2024"
func (p *GoogleDriveProvider) ListFiles(ctx context.Context, dir string, recursive bool) ([]FileInfo, error) {
	folderID, err := p.folderID(ctx, dir, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find folder")
	}
	var files []FileInfo
	if err := p.list(ctx, folderID, dir, recursive, &files); err != nil {
		return nil, errors.Wrap(err, "failed to list files")
	}
	return files, nil
}

func (p *GoogleDriveProvider) list(ctx context.Context, folderID, current string, recursive bool, files *[]FileInfo) error {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	pageToken := ""
	for {
		result, err := p.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, size, modifiedTime, mimeType)").
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		for _, file := range result.Files {
			modTime, _ := parseRFC3339(file.ModifiedTime)
			info := FileInfo{
				ID:       file.Id,
				Name:     file.Name,
				Path:     path.Join(current, file.Name),
				Size:     file.Size,
				ModTime:  modTime,
				IsDir:    file.MimeType == folderMime,
				MimeType: file.MimeType,
			}
			*files = append(*files, info)

			if recursive && info.IsDir {
				if err := p.list(ctx, file.Id, info.Path, recursive, files); err != nil {
					return err
				}
			}
		}

		if result.NextPageToken == "" {
			return nil
		}
		pageToken = result.NextPageToken
	}
}

// folderID resolves a slash separated folder path from My Drive. Missing
// folders are created when create is set.
func (p *GoogleDriveProvider) folderID(ctx context.Context, dir string, create bool) (string, error) {
	parentID := "root"
	for _, part := range strings.Split(path.Clean("/"+filepath.ToSlash(dir)), "/") {
		if part == "" {
			continue
		}
		query := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
			escapeQuery(part), parentID, folderMime)

		result, err := p.service.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
		if err != nil {
			return "", errors.Wrapf(err, "failed to find folder %s", part)
		}
		if len(result.Files) > 0 {
			parentID = result.Files[0].Id
			continue
		}
		if !create {
			return "", errors.Errorf("folder not found: %s", part)
		}
		folder, err := p.service.Files.Create(&drive.File{
			Name:     part,
			MimeType: folderMime,
			Parents:  []string{parentID},
		}).Fields("id").Context(ctx).Do()
		if err != nil {
			return "", errors.Wrapf(err, "failed to create folder %s", part)
		}
		parentID = folder.Id
	}
	return parentID, nil
}

// OpenFile downloads a file by ID
func (p *GoogleDriveProvider) OpenFile(ctx context.Context, id string) (io.ReadCloser, error) {
	resp, err := p.service.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, errors.Wrap(err, "failed to download file")
	}
	return resp.Body, nil
}

// CreateFile streams an upload into dir/name, creating dir when missing
func (p *GoogleDriveProvider) CreateFile(ctx context.Context, dir, name string) (io.WriteCloser, error) {
	parentID, err := p.folderID(ctx, dir, true)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := p.service.Files.Create(&drive.File{
			Name:    name,
			Parents: []string{parentID},
		}).Media(pr).Context(ctx).Do()
		pr.CloseWithError(err)
		u.done <- err
	}()
	return u, nil
}

// upload hands written bytes to a running Files.Create call.
type upload struct {
	pw   *io.PipeWriter
	done chan error
}

func (u *upload) Write(b []byte) (int, error) {
	return u.pw.Write(b)
}

func (u *upload) Close() error {
	u.pw.Close()
	return errors.Wrap(<-u.done, "failed to upload file")
}

// CloseWithError aborts the upload so Drive never stores a partial file.
func (u *upload) CloseWithError(err error) error {
	u.pw.CloseWithError(err)
	return errors.Wrap(<-u.done, "upload aborted")
}

// Name returns the provider name
func (p *GoogleDriveProvider) Name() string {
	return "google-drive"
}

// Close is a no-op: the Drive client holds no open resources
func (p *GoogleDriveProvider) Close() error {
	return nil
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("\n🔐 Go to the following link in your browser:\n%s\n\n", authURL)
	fmt.Print("Enter authorization code: ")

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, errors.Wrap(err, "failed to read authorization code")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange token")
	}
	return token, nil
}

var _ Provider = (*GoogleDriveProvider)(nil)

// Package users is the immutable-after-load credential directory. Entries come
// from a yaml file at startup; there is no online user management.
package users

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/friendlyshare-go/types"
)

// Credential is one stored user: a bcrypt hash plus a role name.
type Credential struct {
	Bcrypt string `yaml:"bcrypt"`
	Role   string `yaml:"role"`
}

type credsFile struct {
	Users map[string]Credential `yaml:"users"`
}

type entry struct {
	hash []byte
	role types.Role
}

// Directory maps usernames to verified credentials. Read-only after Load.
type Directory struct {
	users map[string]entry
}

// Load reads the credentials file. Unknown roles are a startup error, not a
// silent downgrade.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %v", err)
	}
	var file credsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %v", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("credentials file %s contains no users", path)
	}
	return FromCredentials(file.Users)
}

// FromCredentials builds a directory from an in-memory credential map.
func FromCredentials(creds map[string]Credential) (*Directory, error) {
	dir := &Directory{users: make(map[string]entry, len(creds))}
	for name, cred := range creds {
		role, err := types.ParseRole(cred.Role)
		if err != nil {
			return nil, fmt.Errorf("user %q: %v", name, err)
		}
		if cred.Bcrypt == "" {
			return nil, fmt.Errorf("user %q: missing bcrypt hash", name)
		}
		dir.users[name] = entry{hash: []byte(cred.Bcrypt), role: role}
	}
	return dir, nil
}

// Authenticate verifies a basic-auth header and returns the matching user.
// Every failure mode (missing header, bad encoding, unknown user, wrong
// password) reports the same plain false.
func (d *Directory) Authenticate(header string) (types.User, bool) {
	name, pass, ok := parseBasicAuth(header)
	if !ok {
		return types.User{}, false
	}
	e, ok := d.users[name]
	if !ok {
		return types.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(e.hash, []byte(pass)); err != nil {
		return types.User{}, false
	}
	return types.User{Name: name, Role: e.role}, true
}

// Len reports how many users were loaded.
func (d *Directory) Len() int {
	return len(d.users)
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
	if err != nil {
		return "", "", false
	}
	decoded := string(raw)
	i := strings.IndexByte(decoded, ':')
	if i <= 0 {
		return "", "", false
	}
	return decoded[:i], decoded[i+1:], true
}

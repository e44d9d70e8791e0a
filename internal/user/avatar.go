package user

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const avatarPrefix = "avatars/"

var (
	ErrUnsupportedImage = errors.New("profile picture must be a png, jpeg, gif or webp data URI")
	ErrReservedPicture  = errors.New("profile picture must be a URL or a data URI")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// inlineImage is a decoded "data:image/...;base64," profile picture.
type inlineImage struct {
	data        []byte
	contentType string
	ext         string
}

func isDataURI(v string) bool {
	return strings.HasPrefix(v, "data:")
}

func parseDataURI(v string) (*inlineImage, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(v, "data:"), ",")
	if !ok {
		return nil, ErrUnsupportedImage
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	ext, known := imageExtensions[strings.ToLower(contentType)]
	if !known || encoding != "base64" {
		return nil, ErrUnsupportedImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: bad base64 payload", ErrUnsupportedImage)
	}
	return &inlineImage{data: data, contentType: strings.ToLower(contentType), ext: ext}, nil
}

func avatarDir(userID string) string {
	return avatarPrefix + userID + "/"
}

func newAvatarKey(userID, ext string) string {
	return avatarDir(userID) + uuid.NewString() + ext
}

// IsAvatarKey reports whether a stored profile picture refers to an
// uploaded object rather than an external URL.
func IsAvatarKey(v string) bool {
	return strings.HasPrefix(v, avatarPrefix)
}

// ownsAvatar reports whether key is an object uploaded for userID.
func ownsAvatar(userID, key string) bool {
	return userID != "" && strings.HasPrefix(key, avatarDir(userID))
}

package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type FileKeyStrategy string

const (
	StrategyDateBased    FileKeyStrategy = "date_based"
	StrategyRequestBased FileKeyStrategy = "request_based"
)

var (
	dangerousChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	unsafeChars    = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)
	repeatedSeps   = regexp.MustCompile(`[_\-\.]{2,}`)
)

type FileKeyGenerator struct {
	strategy   FileKeyStrategy
	prefix     string
	maxNameLen int
	now        func() time.Time
}

func NewFileKeyGenerator(strategy FileKeyStrategy, prefix string) *FileKeyGenerator {
	return &FileKeyGenerator{
		strategy:   strategy,
		prefix:     prefix,
		maxNameLen: 50,
		now:        time.Now,
	}
}

func (fkg *FileKeyGenerator) GenerateFileKey(filename, requestID string) string {
	switch fkg.strategy {
	case StrategyRequestBased:
		return fkg.generateRequestBasedKey(filename, requestID)
	case StrategyDateBased:
		return fkg.generateDateBasedKey(filename)
	default:
		return fkg.generateTimestampUUIDKey(filename)
	}
}

func (fkg *FileKeyGenerator) generateTimestampUUIDKey(filename string) string {
	return fmt.Sprintf("%s/%d_%s_%s", fkg.prefix, fkg.now().Unix(), uuid.New().String(), fkg.cleanFilename(filename))
}

// prefix/YYYY/MM/DD/<short uuid>_<name>
func (fkg *FileKeyGenerator) generateDateBasedKey(filename string) string {
	now := fkg.now().UTC()
	uid := uuid.New().String()[:8]
	return fmt.Sprintf("%s/%s/%s_%s", fkg.prefix, now.Format("2006/01/02"), uid, fkg.cleanFilename(filename))
}

// prefix/<request hash>/<unix>_<name>; keys of one request share a folder.
func (fkg *FileKeyGenerator) generateRequestBasedKey(filename, requestID string) string {
	reqHash := fkg.hashString(requestID)[:12]
	return fmt.Sprintf("%s/%s/%d_%s", fkg.prefix, reqHash, fkg.now().Unix(), fkg.cleanFilename(filename))
}

func (fkg *FileKeyGenerator) cleanFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filename, filepath.Ext(filename))

	cleanBase := fkg.sanitizeFilename(baseName)
	if len(cleanBase) > fkg.maxNameLen {
		cleanBase = fkg.ensureValidUTF8End(cleanBase[:fkg.maxNameLen])
	}
	if cleanBase == "" || cleanBase == "_" {
		cleanBase = "document"
	}
	return cleanBase + ext
}

func (fkg *FileKeyGenerator) sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = dangerousChars.ReplaceAllString(name, "")
	// letters, digits, underscore, dash and dot only
	name = unsafeChars.ReplaceAllString(name, "_")
	name = repeatedSeps.ReplaceAllString(name, "_")
	return strings.Trim(name, "_-.")
}

// ensureValidUTF8End drops a multi-byte rune cut in half by truncation.
func (fkg *FileKeyGenerator) ensureValidUTF8End(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			return s
		}
		s = s[:len(s)-1]
	}
	return s
}

func (fkg *FileKeyGenerator) hashString(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])
}

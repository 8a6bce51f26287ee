package model

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryPDF   Category = "pdf"
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryOther Category = "other"
)

// StoredFile is a file present in the upload directory. The name is its only identity.
type StoredFile struct {
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
}

// CategoryOf buckets a filename by case-insensitive suffix.
func CategoryOf(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "pdf"):
		return CategoryPDF
	case strings.HasSuffix(lower, "png"),
		strings.HasSuffix(lower, "jpg"),
		strings.HasSuffix(lower, "jpeg"):
		return CategoryImage
	case strings.HasSuffix(lower, "mp4"),
		strings.HasSuffix(lower, "mov"):
		return CategoryVideo
	default:
		return CategoryOther
	}
}

// Listing is the dashboard view of the upload directory.
type Listing struct {
	Documents []StoredFile
	Images    []StoredFile
	Videos    []StoredFile
	// Video is the first video in listing order, nil when there is none.
	Video *StoredFile
}

// Partition splits files into display buckets, preserving their order.
// Files of CategoryOther are left out.
func Partition(files []StoredFile) Listing {
	var l Listing
	for _, f := range files {
		switch f.Category {
		case CategoryPDF:
			l.Documents = append(l.Documents, f)
		case CategoryImage:
			l.Images = append(l.Images, f)
		case CategoryVideo:
			l.Videos = append(l.Videos, f)
		}
	}
	if len(l.Videos) > 0 {
		v := l.Videos[0]
		l.Video = &v
	}
	return l
}

// Empty reports whether the listing has nothing to show.
func (l Listing) Empty() bool {
	return len(l.Documents) == 0 && len(l.Images) == 0 && len(l.Videos) == 0
}

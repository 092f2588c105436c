package uploader

import "github.com/h2non/bimg"

// Thumbnail downscales an image to the given width, keeping aspect ratio.
func Thumbnail(data []byte, width int) ([]byte, error) {
	return bimg.NewImage(data).Process(bimg.Options{Width: width})
}

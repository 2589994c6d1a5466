package uploader

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"footstep/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// ImageStore 把上传的图片保存为可长期访问的 URL
type ImageStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Bucket oss.Bucket 的最小子集
type Bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type AliyunOSSUploader struct {
	bucket  Bucket
	baseURL string
	now     func() time.Time
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}
	return NewUploaderWithBucket(bucket, cfg), nil
}

func NewUploaderWithBucket(bucket Bucket, cfg config.OSSConfig) *AliyunOSSUploader {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return &AliyunOSSUploader{
		bucket:  bucket,
		baseURL: fmt.Sprintf("https://%s.%s", cfg.BucketName, endpoint),
		now:     time.Now,
	}
}

func (u *AliyunOSSUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 文件名：YYYYMMDD/uuid.ext
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%s/%s%s", u.now().Format("20060102"), uuid.New().String(), ext)

	if err := u.bucket.PutObject(name, src, oss.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	// bucket 为 public-read 或走 CDN
	return u.baseURL + "/" + name, nil
}

package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/docchat/pkg/configs"
	nlog "github.com/yeisme/docchat/pkg/log"
)

// S3 把文件写入 S3 兼容对象存储，path 即对象键.
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 初始化 MinIO 客户端，bucket 不存在时创建.
func NewS3(ctx context.Context, cfg *configs.S3Config) (*S3, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许传入带 schema 的 endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			secure = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("docchat", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &S3{client: cli, bucket: cfg.BucketName}, nil
}

// Name 后端名称.
func (s *S3) Name() string { return "s3" }

// Save 上传对象，size 未知时传 -1.
func (s *S3) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", 0, fmt.Errorf("put object %s: %w", name, err)
	}

	return name, info.Size, nil
}

// Open 读取对象.
func (s *S3) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}

	return obj, nil
}

// Remove 删除对象，对象不存在时 S3 同样返回成功.
func (s *S3) Remove(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", path, err)
	}

	return nil
}

// HealthCheck 通过检查 bucket 验证连接.
func (s *S3) HealthCheck(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)

	return err
}

package common

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"footstep/internal/pkg/uploader"
	"footstep/pkg/apperr"
	baseModel "footstep/pkg/model"
	"footstep/pkg/response"

	"github.com/gin-gonic/gin"
)

// ParseID 解析路径中的数字 ID
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(response.ErrInvalidParam, "invalid "+name)
	}
	return uint(id), nil
}

// ParseDate 解析 yyyy-mm-dd 日期
func ParseDate(value, name string) (time.Time, error) {
	d, err := time.Parse(baseModel.DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(response.ErrInvalidParam, name+" must be "+baseModel.DateLayout)
	}
	return d, nil
}

// OptionalFile 读取可选的上传文件，没有该字段时返回 nil
func OptionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation(response.ErrInvalidParam, "invalid "+field)
	}
	return file, nil
}

// UploadHandler 批量上传图片到对象存储
// @Summary 上传图片 (支持批量)
// @Tags Common
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files"
// @Success 200 {object} response.Response{data=[]string} "URLs"
// @Router /upload [post]
func UploadHandler(store uploader.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid form data")
			return
		}

		files := form.File["files"]
		if len(files) == 0 {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "No files uploaded")
			return
		}

		if store == nil {
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Uploader not initialized")
			return
		}

		// 按索引写入，保证顺序
		urls := make([]string, len(files))

		var wg sync.WaitGroup
		var errOnce sync.Once
		var uploadErr error

		// 限制并发数为 5
		sem := make(chan struct{}, 5)

		for i, file := range files {
			wg.Add(1)
			go func(index int, f *multipart.FileHeader) {
				defer wg.Done()

				sem <- struct{}{}
				defer func() { <-sem }()

				url, err := store.Upload(c.Request.Context(), f)
				if err != nil {
					errOnce.Do(func() {
						uploadErr = err
					})
					return
				}
				urls[index] = url
			}(i, file)
		}

		wg.Wait()

		if uploadErr != nil {
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed: "+uploadErr.Error())
			return
		}

		response.Success(c, urls)
	}
}

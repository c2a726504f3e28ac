// Package handler 实现HTTP接口处理器
package handler

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

// parseID 解析路径中的数字ID
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.ErrInvalidParameters.WithDetailsf("invalid %s: %q", name, c.Param(name))
	}
	return uint(id), nil
}

// parsePage 解析分页参数，非法值回退到默认值
func parsePage(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.Query("page_size")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}
	return page, pageSize
}

// bindError 请求体解析失败时的统一错误
// 校验失败时列出每个字段和未通过的规则
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ErrInvalidParameters.WithDetails(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return errors.ErrInvalidParameters.WithDetails(strings.Join(fields, "; "))
}

func init() {
	// 校验错误中使用json字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

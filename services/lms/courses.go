package lms

import (
	"context"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/course"
	"github.com/shulehq/shule-admin/storage/cache"
)

// CourseService is the typed facade over the "courses" resource.
type CourseService struct {
	res *Resource[course.Course]
}

func NewCourseService(client *Client, store *cache.Cache) *CourseService {
	return &CourseService{res: NewResource[course.Course](client, store, "courses")}
}

func (svc *CourseService) List(ctx context.Context, page int, filter course.QueryFilter) (ListResult[course.Course], error) {
	return svc.res.List(ctx, page, filter.Values())
}

func (svc *CourseService) Get(ctx context.Context, id int) (course.Course, error) {
	return svc.res.Get(ctx, id)
}

func (svc *CourseService) Create(ctx context.Context, nc course.NewCourse) (course.Course, error) {
	return svc.res.Create(ctx, nc.Payload())
}

func (svc *CourseService) Update(ctx context.Context, id int, uc course.UpdateCourse) (course.Course, error) {
	return svc.res.Update(ctx, id, uc.Payload())
}

func (svc *CourseService) Delete(ctx context.Context, id int) error {
	return svc.res.Delete(ctx, id)
}

// CreatePayload and UpdatePayload expose the raw submission path the form
// controllers bind to.
func (svc *CourseService) CreatePayload(ctx context.Context, p core.Payload) (course.Course, error) {
	return svc.res.Create(ctx, p)
}

func (svc *CourseService) UpdatePayload(ctx context.Context, id int, p core.Payload) (course.Course, error) {
	return svc.res.Update(ctx, id, p)
}

package lms

import (
	"context"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/group"
	"github.com/shulehq/shule-admin/storage/cache"
)

// GroupService is the typed facade over the "groups" resource.
type GroupService struct {
	res *Resource[group.Group]
}

func NewGroupService(client *Client, store *cache.Cache) *GroupService {
	return &GroupService{res: NewResource[group.Group](client, store, "groups")}
}

func (svc *GroupService) List(ctx context.Context, page int, filter group.QueryFilter) (ListResult[group.Group], error) {
	return svc.res.List(ctx, page, filter.Values())
}

func (svc *GroupService) Get(ctx context.Context, id int) (group.Group, error) {
	return svc.res.Get(ctx, id)
}

func (svc *GroupService) Create(ctx context.Context, ng group.NewGroup) (group.Group, error) {
	return svc.res.Create(ctx, ng.Payload())
}

func (svc *GroupService) Update(ctx context.Context, id int, ug group.UpdateGroup) (group.Group, error) {
	return svc.res.Update(ctx, id, ug.Payload())
}

func (svc *GroupService) Delete(ctx context.Context, id int) error {
	return svc.res.Delete(ctx, id)
}

func (svc *GroupService) CreatePayload(ctx context.Context, p core.Payload) (group.Group, error) {
	return svc.res.Create(ctx, p)
}

func (svc *GroupService) UpdatePayload(ctx context.Context, id int, p core.Payload) (group.Group, error) {
	return svc.res.Update(ctx, id, p)
}

package tagger

import (
	"context"
	"fmt"
)

// fakeClient is an in-memory workspace holding resources of one kind.
type fakeClient struct {
	kind      Kind
	resources []Resource

	getErr    map[string]error
	listErr   error
	updateErr map[string]error

	getCalls  []string
	listCalls int
	updates   []fakeUpdate
}

type fakeUpdate struct {
	ID   string
	Tags map[string]string
}

func newFakeClient(kind Kind, resources ...Resource) *fakeClient {
	for i := range resources {
		resources[i].Kind = kind
	}
	return &fakeClient{
		kind:      kind,
		resources: resources,
		getErr:    make(map[string]error),
		updateErr: make(map[string]error),
	}
}

func (c *fakeClient) Kind() Kind { return c.kind }

func (c *fakeClient) Get(_ context.Context, id string) (*Resource, error) {
	c.getCalls = append(c.getCalls, id)
	if err, ok := c.getErr[id]; ok {
		return nil, err
	}
	for i := range c.resources {
		if c.resources[i].ID == id {
			res := c.resources[i]
			res.Tags = copyTags(res.Tags)
			return &res, nil
		}
	}
	return nil, fmt.Errorf("RESOURCE_DOES_NOT_EXIST: %s %s does not exist", c.kind, id)
}

func (c *fakeClient) List(_ context.Context) ([]Resource, error) {
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]Resource, len(c.resources))
	for i := range c.resources {
		out[i] = Resource{Kind: c.kind, ID: c.resources[i].ID, Name: c.resources[i].Name}
	}
	return out, nil
}

func (c *fakeClient) UpdateTags(_ context.Context, id string, tags map[string]string) error {
	if err, ok := c.updateErr[id]; ok {
		return err
	}
	c.updates = append(c.updates, fakeUpdate{ID: id, Tags: copyTags(tags)})
	for i := range c.resources {
		if c.resources[i].ID == id {
			c.resources[i].Tags = copyTags(tags)
			return nil
		}
	}
	return fmt.Errorf("%s %s does not exist", c.kind, id)
}

// tagsOf returns the stored tags for id.
func (c *fakeClient) tagsOf(id string) map[string]string {
	for i := range c.resources {
		if c.resources[i].ID == id {
			return c.resources[i].Tags
		}
	}
	return nil
}

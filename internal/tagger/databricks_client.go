package tagger

import (
	"context"
	"fmt"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/service/compute"
	"github.com/databricks/databricks-sdk-go/service/sql"
)

// WorkspaceConfig selects the Databricks workspace and credentials. Empty
// fields are resolved by the SDK's default chain (DATABRICKS_* environment
// variables, then ~/.databrickscfg).
type WorkspaceConfig struct {
	Host    string
	Token   string
	Profile string
}

// newWorkspaceClient builds a databricks.WorkspaceClient from cfg.
func newWorkspaceClient(cfg WorkspaceConfig) (*databricks.WorkspaceClient, error) {
	w, err := databricks.NewWorkspaceClient(&databricks.Config{
		Host:    cfg.Host,
		Token:   cfg.Token,
		Profile: cfg.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("create databricks workspace client: %w", err)
	}
	return w, nil
}

// newRealClient is the clientFactory used by New.
func newRealClient(_ context.Context, kind Kind, cfg WorkspaceConfig) (resourceClient, error) {
	w, err := newWorkspaceClient(cfg)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindCluster:
		return newClusterClient(w.Clusters), nil
	case KindWarehouse:
		return &warehouseClient{api: w.Warehouses}, nil
	default:
		return nil, fmt.Errorf("unsupported resource kind %q", kind)
	}
}

// ---------- all-purpose clusters ----------

// clusterClient implements resourceClient for all-purpose clusters.
type clusterClient struct {
	api compute.ClustersInterface

	// specs caches the full cluster details from Get. The clusters edit
	// call replaces the whole spec, so UpdateTags resubmits it.
	specs map[string]*compute.ClusterDetails
}

func newClusterClient(api compute.ClustersInterface) *clusterClient {
	return &clusterClient{
		api:   api,
		specs: make(map[string]*compute.ClusterDetails),
	}
}

func (c *clusterClient) Kind() Kind { return KindCluster }

// Get fetches a cluster by cluster_id.
func (c *clusterClient) Get(ctx context.Context, id string) (*Resource, error) {
	details, err := c.api.Get(ctx, compute.GetClusterRequest{ClusterId: id})
	if err != nil {
		return nil, err
	}
	c.specs[details.ClusterId] = details
	return &Resource{
		Kind: KindCluster,
		ID:   details.ClusterId,
		Name: details.ClusterName,
		Tags: copyTags(details.CustomTags),
	}, nil
}

// List returns every cluster visible to the caller.
func (c *clusterClient) List(ctx context.Context) ([]Resource, error) {
	all, err := c.api.ListAll(ctx, compute.ListClustersRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]Resource, 0, len(all))
	for i := range all {
		out = append(out, Resource{
			Kind: KindCluster,
			ID:   all[i].ClusterId,
			Name: all[i].ClusterName,
		})
	}
	return out, nil
}

// UpdateTags resubmits the cluster spec with custom_tags replaced. A
// running cluster is restarted by the workspace to apply the edit; the call
// does not wait for that.
func (c *clusterClient) UpdateTags(ctx context.Context, id string, tags map[string]string) error {
	details, ok := c.specs[id]
	if !ok {
		var err error
		details, err = c.api.Get(ctx, compute.GetClusterRequest{ClusterId: id})
		if err != nil {
			return err
		}
		c.specs[id] = details
	}
	_, err := c.api.Edit(ctx, buildEditCluster(details, tags))
	return err
}

// buildEditCluster copies the editable fields of details into an edit
// request carrying tags as the new custom tag set.
func buildEditCluster(details *compute.ClusterDetails, tags map[string]string) compute.EditCluster {
	req := compute.EditCluster{
		ClusterId:                 details.ClusterId,
		ClusterName:               details.ClusterName,
		SparkVersion:              details.SparkVersion,
		NodeTypeId:                details.NodeTypeId,
		DriverNodeTypeId:          details.DriverNodeTypeId,
		Autoscale:                 details.Autoscale,
		NumWorkers:                details.NumWorkers,
		AwsAttributes:             details.AwsAttributes,
		AzureAttributes:           details.AzureAttributes,
		GcpAttributes:             details.GcpAttributes,
		DataSecurityMode:          details.DataSecurityMode,
		SingleUserName:            details.SingleUserName,
		SparkConf:                 details.SparkConf,
		SparkEnvVars:              details.SparkEnvVars,
		AutoterminationMinutes:    details.AutoterminationMinutes,
		PolicyId:                  details.PolicyId,
		InstancePoolId:            details.InstancePoolId,
		DriverInstancePoolId:      details.DriverInstancePoolId,
		EnableElasticDisk:         details.EnableElasticDisk,
		EnableLocalDiskEncryption: details.EnableLocalDiskEncryption,
		InitScripts:               details.InitScripts,
		ClusterLogConf:            details.ClusterLogConf,
		SshPublicKeys:             details.SshPublicKeys,
		DockerImage:               details.DockerImage,
		RuntimeEngine:             details.RuntimeEngine,
		Kind:                      details.Kind,
		IsSingleNode:              details.IsSingleNode,
		UseMlRuntime:              details.UseMlRuntime,
		WorkloadType:              details.WorkloadType,
		CustomTags:                tags,
	}

	// Pool-backed clusters report the pool's node type, but the edit call
	// rejects a node type alongside a pool.
	if req.InstancePoolId != "" {
		req.NodeTypeId = ""
	}
	if req.DriverInstancePoolId != "" {
		req.DriverNodeTypeId = ""
	} else if req.DriverNodeTypeId == "" {
		req.DriverNodeTypeId = req.NodeTypeId
	}

	// Fixed-size clusters must send num_workers even when it is zero
	// (single node); autoscaling clusters send the autoscale range instead.
	if req.Autoscale == nil {
		req.ForceSendFields = append(req.ForceSendFields, "NumWorkers")
	}
	if req.IsSingleNode {
		req.ForceSendFields = append(req.ForceSendFields, "IsSingleNode")
	}
	if req.UseMlRuntime {
		req.ForceSendFields = append(req.ForceSendFields, "UseMlRuntime")
	}
	return req
}

// ---------- SQL warehouses ----------

// warehouseClient implements resourceClient for SQL warehouses.
type warehouseClient struct {
	api sql.WarehousesInterface
}

func (c *warehouseClient) Kind() Kind { return KindWarehouse }

// Get fetches a warehouse by ID and flattens its tag pairs.
func (c *warehouseClient) Get(ctx context.Context, id string) (*Resource, error) {
	wh, err := c.api.Get(ctx, sql.GetWarehouseRequest{Id: id})
	if err != nil {
		return nil, err
	}
	return &Resource{
		Kind: KindWarehouse,
		ID:   wh.Id,
		Name: wh.Name,
		Tags: endpointTagsToMap(wh.Tags),
	}, nil
}

// List returns every SQL warehouse visible to the caller.
func (c *warehouseClient) List(ctx context.Context) ([]Resource, error) {
	all, err := c.api.ListAll(ctx, sql.ListWarehousesRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]Resource, 0, len(all))
	for i := range all {
		out = append(out, Resource{
			Kind: KindWarehouse,
			ID:   all[i].Id,
			Name: all[i].Name,
		})
	}
	return out, nil
}

// UpdateTags sends the full tag set in the warehouse edit call.
func (c *warehouseClient) UpdateTags(ctx context.Context, id string, tags map[string]string) error {
	_, err := c.api.Edit(ctx, sql.EditWarehouseRequest{
		Id:   id,
		Tags: mapToEndpointTags(tags),
	})
	return err
}

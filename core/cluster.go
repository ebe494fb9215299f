package core

// Cluster is the cluster context a facade belongs to.
type Cluster interface {
	// Name identifies the owning cluster.
	Name() string
}

// ClusterAware is implemented by listeners that want the owning cluster
// context injected before registration.
type ClusterAware interface {
	SetCluster(c Cluster)
}

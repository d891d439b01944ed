package auth

import (
	"hash/crc32"
	"sort"
	"strconv"
	"sync"
)

// ConsistentHashRing 一致性哈希环，token 缓存按节点分片时用于选择节点前缀
type ConsistentHashRing struct {
	mu       sync.RWMutex
	replicas int
	points   []uint32 // 已排序的虚拟节点哈希
	owners   map[uint32]string
	nodes    map[string]struct{}
}

// NewConsistentHashRing 创建哈希环，nodes 为空时放入一个默认节点
func NewConsistentHashRing(nodes []string, replicas int) *ConsistentHashRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"auth-node-default"}
	}
	r := &ConsistentHashRing{
		replicas: replicas,
		owners:   make(map[uint32]string),
		nodes:    make(map[string]struct{}),
	}
	r.Add(nodes...)
	return r
}

func virtualKey(node string, i int) uint32 {
	return crc32.ChecksumIEEE([]byte(node + "#" + strconv.Itoa(i)))
}

// Add 批量添加节点，重复节点忽略
func (r *ConsistentHashRing) Add(nodes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, node := range nodes {
		if _, ok := r.nodes[node]; ok {
			continue
		}
		r.nodes[node] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			h := virtualKey(node, i)
			r.points = append(r.points, h)
			r.owners[h] = node
		}
	}
	sort.Slice(r.points, func(i, j int) bool { return r.points[i] < r.points[j] })
}

// Remove 下线节点，其虚拟节点全部移除
func (r *ConsistentHashRing) Remove(node string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[node]; !ok {
		return
	}
	delete(r.nodes, node)
	kept := r.points[:0]
	for _, p := range r.points {
		if r.owners[p] == node {
			delete(r.owners, p)
			continue
		}
		kept = append(kept, p)
	}
	r.points = kept
}

// GetNode 根据 key 获取负责的节点，环为空时返回空串
func (r *ConsistentHashRing) GetNode(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.points) == 0 {
		return ""
	}
	h := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(r.points), func(i int) bool { return r.points[i] >= h })
	if idx == len(r.points) {
		idx = 0
	}
	return r.owners[r.points[idx]]
}

// Len 当前真实节点数
func (r *ConsistentHashRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

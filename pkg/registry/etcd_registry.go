package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// ServiceRegistry 把服务实例注册到etcd，租约过期后自动下线
type ServiceRegistry struct {
	client      *clientv3.Client
	serviceName string
	serviceID   string
	serviceAddr string
	ttl         int64
	leaseID     clientv3.LeaseID
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewServiceRegistry 创建注册器
func NewServiceRegistry(etcdCfg config.EtcdConfig, svcCfg config.ServiceRegistryConfig, serviceAddr string) (*ServiceRegistry, error) {
	if len(etcdCfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints are required")
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   etcdCfg.Endpoints,
		DialTimeout: etcdCfg.DialTimeout,
		Username:    etcdCfg.Username,
		Password:    etcdCfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ttl := int64(svcCfg.TTL / time.Second)
	if ttl <= 0 {
		ttl = 30
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ServiceRegistry{
		client:      client,
		serviceName: svcCfg.ServiceName,
		serviceID:   svcCfg.ServiceID,
		serviceAddr: serviceAddr,
		ttl:         ttl,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Key 实例在etcd中的键
func (r *ServiceRegistry) Key() string {
	return ServiceKey(r.serviceName, r.serviceID)
}

// ServiceKey 拼接实例键
func ServiceKey(serviceName, serviceID string) string {
	return fmt.Sprintf("/services/%s/%s", serviceName, serviceID)
}

// Register 申请租约并写入实例地址
func (r *ServiceRegistry) Register() error {
	leaseResp, err := r.client.Grant(r.ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to grant lease: %w", err)
	}
	r.leaseID = leaseResp.ID

	if _, err := r.client.Put(r.ctx, r.Key(), r.serviceAddr, clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := r.client.KeepAlive(r.ctx, r.leaseID)
	if err != nil {
		return fmt.Errorf("failed to keep alive lease: %w", err)
	}
	r.wg.Add(1)
	go r.drainKeepAlive(ch)

	logger.Infof("Service registered key=%s addr=%s ttl=%ds", r.Key(), r.serviceAddr, r.ttl)
	return nil
}

func (r *ServiceRegistry) drainKeepAlive(ch <-chan *clientv3.LeaseKeepAliveResponse) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case ka, ok := <-ch:
			if !ok || ka == nil {
				logger.Warnf("Etcd keep alive channel closed key=%s", r.Key())
				return
			}
		}
	}
}

// Deregister 撤销租约并关闭客户端
func (r *ServiceRegistry) Deregister() error {
	r.cancel()
	r.wg.Wait()
	if r.leaseID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := r.client.Revoke(ctx, r.leaseID); err != nil {
			logger.Warnf("Failed to revoke lease key=%s error=%v", r.Key(), err)
		}
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}
	logger.Infof("Service deregistered key=%s", r.Key())
	return nil
}

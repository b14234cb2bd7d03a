package memory

import "sync"

// keyedMutex 提供按键互斥：同一个键上的持有者互相排队，不同键互不阻塞。
// 键空间受限于数据集中的邮件/用户数量，因此条目不做回收。
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// lock 锁定指定键并返回解锁函数。
func (km *keyedMutex) lock(key string) func() {
	value, _ := km.locks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

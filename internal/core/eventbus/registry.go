package eventbus

import (
	"fmt"
	"reflect"
	"sync"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

var typeNamerType = reflect.TypeOf((*pkgif.TypeNamer)(nil)).Elem()

// Registry 事件类型注册表
//
// 把 Go 类型解析为稳定的 TypeID，解析顺序：
//  1. 显式注册（Register）
//  2. 类型实现 TypeNamer，使用 EventType() 的返回值
//  3. 允许隐式类型时，使用包路径限定的类型名
//
// 解析结果按 Go 类型缓存；投递时只比较 TypeID。
type Registry struct {
	mu sync.RWMutex

	// resolved Go 类型 → 类型标识
	resolved map[reflect.Type]types.TypeID
	// owners 类型标识 → Go 类型（用于冲突检测）
	owners map[types.TypeID]reflect.Type

	allowImplicit bool
}

// NewRegistry 创建类型注册表
func NewRegistry(allowImplicit bool) *Registry {
	return &Registry{
		resolved:      make(map[reflect.Type]types.TypeID),
		owners:        make(map[types.TypeID]reflect.Type),
		allowImplicit: allowImplicit,
	}
}

// Register 显式注册类型标识
//
// 必须在该类型首次被解析之前注册，否则与已解析结果不同时返回 ErrTypeConflict。
func (r *Registry) Register(typ reflect.Type, id types.TypeID) error {
	if err := checkEventType(typ); err != nil {
		return err
	}
	if !id.IsValid() {
		return ErrInvalidTypeID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bindLocked(typ, id)
}

// Resolve 解析类型标识
func (r *Registry) Resolve(typ reflect.Type) (types.TypeID, error) {
	if err := checkEventType(typ); err != nil {
		return "", err
	}

	r.mu.RLock()
	id, ok := r.resolved[typ]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	id, err := r.derive(typ)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 并发解析时以先写入者为准
	if existing, ok := r.resolved[typ]; ok {
		return existing, nil
	}
	if err := r.bindLocked(typ, id); err != nil {
		return "", err
	}
	return id, nil
}

// Types 返回所有已解析的类型标识
func (r *Registry) Types() []types.TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.TypeID, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) bindLocked(typ reflect.Type, id types.TypeID) error {
	if owner, ok := r.owners[id]; ok && owner != typ {
		return fmt.Errorf("%w: %s is bound to %s, cannot bind %s", ErrTypeConflict, id, owner, typ)
	}
	if prev, ok := r.resolved[typ]; ok && prev != id {
		return fmt.Errorf("%w: %s already resolved to %s", ErrTypeConflict, typ, prev)
	}
	r.resolved[typ] = id
	r.owners[id] = typ
	return nil
}

func (r *Registry) derive(typ reflect.Type) (types.TypeID, error) {
	if typ.Implements(typeNamerType) {
		if name, ok := eventTypeName(typ); ok {
			id := types.TypeID(name)
			if !id.IsValid() {
				return "", fmt.Errorf("%w: %s.EventType() returned empty id", ErrInvalidTypeID, typ)
			}
			return id, nil
		}
	}

	if r.allowImplicit {
		if name := implicitName(typ); name != "" {
			return types.TypeID(name), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnregisteredType, typ)
}

// eventTypeName 在零值上调用 EventType()
//
// 指针类型使用指向零值的非 nil 指针，避免方法内解引用 nil。
func eventTypeName(typ reflect.Type) (name string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			name, ok = "", false
		}
	}()

	var v reflect.Value
	if typ.Kind() == reflect.Pointer {
		v = reflect.New(typ.Elem())
	} else {
		v = reflect.Zero(typ)
	}
	namer, ok := v.Interface().(pkgif.TypeNamer)
	if !ok {
		return "", false
	}
	return namer.EventType(), true
}

func implicitName(typ reflect.Type) string {
	if typ.Kind() == reflect.Pointer {
		if elem := implicitName(typ.Elem()); elem != "" {
			return "*" + elem
		}
		return ""
	}
	if typ.Name() == "" {
		return ""
	}
	if typ.PkgPath() == "" {
		return typ.Name()
	}
	return typ.PkgPath() + "." + typ.Name()
}

func checkEventType(typ reflect.Type) error {
	if typ == nil {
		return ErrInvalidEventType
	}
	if typ.Kind() == reflect.Interface {
		return fmt.Errorf("%w: interface type %s never matches a posted value", ErrInvalidEventType, typ)
	}
	return nil
}

// Package xresolve 把 MAC/EUI 地址或 OUI 前缀解析为所属组织或协议分类。
//
// 解析流程：
//
//  1. 规范化输入（xmac），位数必须在 6 到 16 之间
//  2. 不足完整地址的前缀在右侧补零，只用于分类
//  3. 按顺序应用分类规则（xclassify），命中即返回
//  4. 按 9 → 7 → 6 位查询注册表（xregistry）
//  5. 可选：外部厂商查询兜底，成功后可写回注册表学习层
//  6. 以上都未命中时返回"合法但未注册"结果，而不是错误
//
// 非法输入总是返回 [*InvalidOUIError]，Reason 说明原因；外部查询的失败被吸收，
// 按未注册处理。
//
//	engine, err := xresolve.New(store)
//	if err != nil {
//		return err
//	}
//	res, err := engine.Resolve(ctx, xresolve.Text("24:6D:5E:BB:99:CC"))
//
// # 并发
//
// Engine 并发安全。查询读的是原子持有的 Store；[Engine.Swap] 整体替换 Store，
// 进行中的查询继续使用旧 Store。同一前缀的并发外部查询经由 singleflight 合并。
package xresolve

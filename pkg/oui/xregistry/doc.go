// Package xregistry 保存 IEEE MA-L/MA-M/MA-S 注册表并按前缀查询厂商。
//
// [Store] 持有三张独立映射（6/7/9 位十六进制前缀），查询从最长前缀开始：
// MA-S(9) → MA-M(7) → MA-L(6)。更具体的分配从更宽的 MA-L 块中切出，必须优先。
//
//	records, err := xregistry.ParseCSV(f)
//	store := xregistry.Build(ctx, records, xregistry.WithLogger(logger))
//	rec, ok := store.Lookup("246D5EBB99CC")
//
// # 并发
//
// Store 构建后只读，查询是无锁的 map 读取。唯一的写入路径是 [Store.Learn]：
// 把外部查询得到的一条记录写入学习层，写入串行化并以写时复制替换，
// 读者始终看到完整的旧表或新表。整体刷新由 [Holder] 原子替换引用完成。
//
// # 数据源
//
//   - [ParseCSV]：IEEE CSV（Registry, Assignment, Organization Name, Organization Address）
//   - [ParseText]：IEEE oui.txt 文本格式，额外解析出结构化地址
//   - [LoadDir]：并行读取目录中的三份注册表文件
package xregistry

// Package xmac 提供 MAC/EUI 地址的规范化、校验、格式化与数值转换。
//
// xmac 同时支持 EUI-48（12 位十六进制）与 EUI-64（16 位十六进制）：
//
//   - 规范化：去除 ':' '.' '-' ' ' 分隔符并统一大写（[Normalize]）
//   - 校验：只接受 12 或 16 位十六进制（[Validate]），不截断、不补齐
//   - 格式化：冒号/短线/点/空格/无分隔符，大小写可选（[Format]）
//   - 数值：十进制与二进制视图（[Addr.Decimal]、[FromDecimal]、[Addr.Binary]）
//   - 运算：Add/Sub/Diff，越界返回 [ErrOutOfRange]
//   - IPv6：EUI-64 接口标识、链路本地地址与全局地址
//
// # 快速示例
//
//	addr, err := xmac.Parse("24:6D:5E:BB:99:CC")
//	addr.Digits()                                   // 246D5EBB99CC
//	addr.Format(xmac.NotationPeriod, xmac.Lower)    // 246d.5ebb.99cc
//	addr.Decimal()                                  // 40052159388108
//	addr.LinkLocal()                                // fe80::266d:5eff:febb:99cc
//
// # 设计决策
//
//   - 内部以 uint64 数值加位宽存储，12/16 位十六进制都能无损容纳
//   - 地址记住输入时的分隔风格，String 与运算结果沿用该风格
//   - 相等性只看数字与位宽：[Addr.Equal] 忽略分隔风格；
//     需要作为 map key 时使用 [Addr.Key]
//   - 零值 Addr{} 位宽为 0，表示未初始化的无效地址
//
// # EUI-64 接口标识
//
// 对 48 位地址，[Addr.EUI64Suffix] 在中间插入 FFFE 并翻转首字节的
// U/L 位（bit 1）。对 64 位地址直接使用原始 8 字节，不翻转也不插入。
// 两种位宽的处理并不对称，这是沿用的既有行为，调用方可据此区分。
//
// # 错误处理
//
//	_, err := xmac.Parse("asdfasdf")
//	errors.Is(err, xmac.ErrInvalidFormat)  // true
//
//	_, err = xmac.FromDecimal(1<<48, 48)
//	errors.Is(err, xmac.ErrOutOfRange)     // true
package xmac

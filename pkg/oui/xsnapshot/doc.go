// Package xsnapshot 把注册表持久化为单个快照文件，启动时免去重新解析 CSV。
//
// 文件布局：
//
//	magic "XOUISNAP" | 版本 1 字节 | 标志 1 字节 | xxhash64 8 字节 | 负载
//
// 负载是 CBOR 编码的 [Snapshot]，标志位 [FlagZstd] 表示负载经过 zstd 压缩。
// 校验和覆盖压缩后的负载。
//
// 版本不一致返回 [ErrVersionMismatch]，魔数、校验和或解码失败返回 [ErrCorrupt]。
// 两种情况调用方都应从 CSV 重建并重新保存。
package xsnapshot

/*
 * @author: Sun977
 * @date: 2026.02.15
 * @description: neoport 入口
 */

package main

import "os"

func main() {
	os.Exit(Execute())
}
